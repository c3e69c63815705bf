package api

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

func errMissing(field string) error {
	return fmt.Errorf("missing %s", field)
}

func parsePositive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// jsonName makes validation errors name fields as clients send them.
func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}
