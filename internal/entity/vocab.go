package entity

// Categories and Subcategories are the two fixed classification
// vocabularies. They are independent sets, not a hierarchy: a post carries
// one value from each.
var Categories = []string{
	"tech",
	"travel",
	"food",
	"hiking",
	"lifestyle",
	"education",
	"health",
	"fashion",
	"finance",
	"personal",
	"business",
	"sports",
}

var Subcategories = []string{
	"ai",
	"ml",
	"nature",
	"adventure",
	"deep-learning",
	"wildlife",
	"coding",
	"camping",
	"budget-travel",
	"recipes",
	"fitness",
	"self-help",
}

func ValidCategory(v string) bool {
	return contains(Categories, v)
}

func ValidSubcategory(v string) bool {
	return contains(Subcategories, v)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
