package helpers

import (
	"errors"
	"strings"
)

func Shout(s string, marks int32) string {
	return strings.ToUpper(s) + strings.Repeat("!", int(marks))
}

func Join(sep string, parts ...string) string {
	return strings.Join(parts, sep)
}

func Sum(xs []int64) (int64, error) {
	if len(xs) == 0 {
		return 0, errors.New("empty")
	}
	var total int64
	for _, x := range xs {
		total += x
	}
	return total, nil
}

func Drain(ch chan int) {}

func Now() {}

func unexported(s string) string { return s }
