package expense

import "strings"

// AutoCategory asks the service to pick a category from the description
const AutoCategory = "auto"

type keywordCategory struct {
	keyword  string
	category string
}

// categoryKeywords is checked in order; the first keyword contained in the
// lowercased description wins
var categoryKeywords = []keywordCategory{
	{"costco", "groceries"},
	{"walmart", "groceries"},
	{"trader", "groceries"},
	{"safeway", "groceries"},
	{"kroger", "groceries"},
	{"aldi", "groceries"},
	{"publix", "groceries"},
	{"whole foods", "groceries"},
	{"grocery", "groceries"},
	{"bigbasket", "groceries"},
	{"dmart", "groceries"},
	{"reliance", "groceries"},
	{"pg&e", "utilities"},
	{"pge", "utilities"},
	{"electric", "utilities"},
	{"gas", "utilities"},
	{"water", "utilities"},
	{"internet", "utilities"},
	{"wifi", "utilities"},
	{"at&t", "utilities"},
	{"verizon", "utilities"},
	{"comcast", "utilities"},
	{"jio", "utilities"},
	{"airtel", "utilities"},
	{"bsnl", "utilities"},
	{"rent", "rent"},
	{"lease", "rent"},
	{"housing", "rent"},
	{"toilet", "household_supplies"},
	{"paper", "household_supplies"},
	{"soap", "household_supplies"},
	{"cleaning", "household_supplies"},
	{"detergent", "household_supplies"},
	{"dinner", "shared_meals"},
	{"lunch", "shared_meals"},
	{"breakfast", "shared_meals"},
	{"restaurant", "shared_meals"},
	{"takeout", "shared_meals"},
	{"delivery", "shared_meals"},
	{"zomato", "shared_meals"},
	{"swiggy", "shared_meals"},
	{"ubereats", "shared_meals"},
	{"doordash", "shared_meals"},
	{"amazon", "purchases"},
	{"flipkart", "purchases"},
	{"ebay", "purchases"},
	{"purchase", "purchases"},
	{"order", "purchases"},
}

// Categorize guesses a category from an expense description
func Categorize(description string) string {
	lower := strings.ToLower(description)
	for _, kc := range categoryKeywords {
		if strings.Contains(lower, kc.keyword) {
			return kc.category
		}
	}
	return DefaultCategory
}
