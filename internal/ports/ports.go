package ports

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	portMin = 1
	portMax = 65535
)

// Expand turns an ordered list of port tokens into the ordered list of
// concrete ports. A token without a dash is a single port; "low-high"
// expands to every port in the inclusive range. An inverted range
// (low > high) expands to nothing; that is part of the contract, not an
// error. A token that parses as neither form is a configuration error.
func Expand(tokens []string) ([]int, error) {
	expanded := make([]int, 0, len(tokens))

	for _, token := range tokens {
		low, high, isRange := strings.Cut(token, "-")
		if !isRange {
			port, err := parsePort(token)
			if err != nil {
				return nil, err
			}
			expanded = append(expanded, port)
			continue
		}

		start, err := parsePort(low)
		if err != nil {
			return nil, fmt.Errorf("invalid port range %q: %w", token, err)
		}
		end, err := parsePort(high)
		if err != nil {
			return nil, fmt.Errorf("invalid port range %q: %w", token, err)
		}

		for port := start; port <= end; port++ {
			expanded = append(expanded, port)
		}
	}

	return expanded, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}

	if port < portMin || port > portMax {
		return 0, fmt.Errorf("port %d out of range [%d, %d]", port, portMin, portMax)
	}

	return port, nil
}
