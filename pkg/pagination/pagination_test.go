package pagination

import "testing"

func TestValidateClamps(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 1000}
	p.Validate()
	if p.Page != 1 || p.PerPage != maxPerPage {
		t.Errorf("params = %+v", p)
	}
	p = &PaginationParams{Page: 3, PerPage: 0}
	p.Validate()
	if p.PerPage != defaultPerPage || p.Offset() != 2*defaultPerPage {
		t.Errorf("params = %+v offset %d", p, p.Offset())
	}
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(2, 10, 25)
	if pg.TotalPages != 3 || !pg.HasNext || !pg.HasPrev {
		t.Errorf("pagination = %+v", pg)
	}
	if last := NewPagination(3, 10, 25); last.HasNext {
		t.Error("last page has no next")
	}
	if got := NewPaginatedResult[int](nil, NewPagination(1, 10, 0)); got.Items == nil {
		t.Error("nil items should become an empty slice")
	}
}

func TestDefaultPaginationIsValid(t *testing.T) {
	p := DefaultPagination()
	want := *p
	p.Validate()
	if *p != want || p.Page != 1 || p.Offset() != 0 {
		t.Errorf("default = %+v, after Validate %+v", want, *p)
	}
}
