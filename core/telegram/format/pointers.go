package format

import "strconv"

// DerefString safely dereferences a *string and returns a default value if nil.
func DerefString(s *string, defaultVal string) string {
	if s != nil {
		return *s
	}
	return defaultVal
}

// IntOrDefault renders a *int or a default string if nil.
func IntOrDefault(i *int, defaultVal string) string {
	if i != nil {
		return strconv.Itoa(*i)
	}
	return defaultVal
}
