package query

import "time"

var LookupSpec = Spec{
	Search: []string{"name"},
	Sorts: map[string]string{
		"id":        "id",
		"name":      "name",
		"createdAt": "created_at",
	},
}

var BookSpec = Spec{
	Search: []string{"name", "isbn"},
	Filters: map[string]string{
		"authorId":    "author_id",
		"publisherId": "publisher_id",
		"categoryId":  "category_id",
	},
	Sorts: map[string]string{
		"id":            "id",
		"name":          "name",
		"isbn":          "isbn",
		"yearPublished": "year_published",
		"numPages":      "num_pages",
		"createdAt":     "created_at",
	},
}

var UserSpec = Spec{
	Search: []string{"name", "email"},
	Filters: map[string]string{
		"role": "role",
	},
	Sorts: map[string]string{
		"id":        "id",
		"name":      "name",
		"email":     "email",
		"createdAt": "created_at",
	},
}

var LoanSpec = Spec{
	Filters: map[string]string{
		"userId": "user_id",
		"bookId": "book_id",
	},
	Derived: map[string]Derived{
		"returned": returned,
		"overdue":  overdue,
	},
	Sorts: map[string]string{
		"id":         "id",
		"loanDate":   "loan_date",
		"returnDue":  "return_due",
		"returnDate": "return_date",
	},
}

func returned(want bool, _ time.Time) Condition {
	if want {
		return NotNull("return_date")
	}
	return IsNull("return_date")
}

// A loan is overdue while it is not returned and now is past its due date.
func overdue(want bool, now time.Time) Condition {
	if want {
		return All(IsNull("return_date"), Lt("return_due", now))
	}
	return Any(NotNull("return_date"), Gte("return_due", now))
}
