package entity

// Page is one slice of a paginated transaction listing
type Page struct {
	Items      []*Transaction
	PageNumber int // 1-based
	TotalPages int
	TotalCount int
}

// TotalPagesFor returns ceil(total / size), or 0 when size is not positive
func TotalPagesFor(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total-1)/size + 1
}
