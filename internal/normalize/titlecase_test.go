package normalize

import "testing"

func TestTitleCase_Scenarios(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"TOTAL REVENUE", "Total Revenue"},
		{"cost of goods", "Cost of Goods"},
		{"of the people", "Of the People"}, // minor word capitalized when first
		{"net income", "Net Income"},
		{"", ""},
		{"a", "A"},
		{"REVENUE BY REGION AND PRODUCT", "Revenue by Region and Product"},
	}
	for _, c := range cases {
		if got := TitleCase(c.in); got != c.want {
			t.Fatalf("TitleCase(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTitleCase_Idempotent(t *testing.T) {
	inputs := []string{"TOTAL REVENUE", "cost of goods", "Mixed CASE with the words", "  leading", "double  space"}
	for _, s := range inputs {
		once := TitleCase(s)
		if twice := TitleCase(once); twice != once {
			t.Fatalf("%q: not idempotent: %q -> %q", s, once, twice)
		}
	}
}

func TestTitleCase_NaiveSplit(t *testing.T) {
	// Multi-space runs are preserved as-is by the naive split.
	if got := TitleCase("gross  margin"); got != "Gross  Margin" {
		t.Fatalf("expected double space preserved, got %q", got)
	}
}
