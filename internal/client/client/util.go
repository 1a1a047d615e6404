package client

import (
	"fmt"
	"strconv"
)

func parseUserID(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode response: invalid user id %q", s)
	}
	return id, nil
}
