package validate

import "testing"

func TestSNILS(t *testing.T) {
	valid := []string{
		"123-456-789 01",
		"000-000-000 00",
	}
	for _, s := range valid {
		if !SNILS(s) {
			t.Errorf("SNILS(%q) = false, expected true", s)
		}
	}

	invalid := []string{
		"",
		"123-456-789-01",
		"123-456-78901",
		"123 456 789 01",
		"12-456-789 01",
		"123-456-789 1",
		"123-456-789 012",
		" 123-456-789 01",
		"123-456-789 01 ",
		"abc-def-ghi jk",
	}
	for _, s := range invalid {
		if SNILS(s) {
			t.Errorf("SNILS(%q) = true, expected false", s)
		}
	}
}

func TestDate(t *testing.T) {
	valid := []string{
		"2024-05-18",
		"2024-02-29", // leap year
		"1999-12-31",
	}
	for _, s := range valid {
		if !Date(s) {
			t.Errorf("Date(%q) = false, expected true", s)
		}
	}

	invalid := []string{
		"",
		"2024-5-18",
		"18-05-2024",
		"2024/05/18",
		"2024-13-01",
		"2024-00-10",
		"2024-04-31",
		"2023-02-29", // not a leap year
		"2024-05-18 ",
		"2024-05-18T00:00:00",
	}
	for _, s := range invalid {
		if Date(s) {
			t.Errorf("Date(%q) = true, expected false", s)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	if got := NormalizeText("  Иванов Иван  "); got != "Иванов Иван" {
		t.Errorf("NormalizeText returned %q", got)
	}
}
