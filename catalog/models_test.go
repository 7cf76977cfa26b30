package catalog_test

import (
	"testing"

	"github.com/xraph/restro/catalog"
	"github.com/xraph/restro/id"
	"github.com/xraph/restro/types"
)

func TestFilter(t *testing.T) {
	drinks := id.NewCategoryID()
	mains := id.NewCategoryID()

	products := []*catalog.Product{
		{ID: id.NewProductID(), CategoryID: mains, Name: "Frango à Zambeziana", Description: "Coconut chicken", Price: types.MZN(65000), IsAvailable: true},
		{ID: id.NewProductID(), CategoryID: mains, Name: "Matapa", Description: "Cassava leaves, peanuts", Price: types.MZN(45000), IsAvailable: false},
		{ID: id.NewProductID(), CategoryID: drinks, Name: "2M", Description: "Lager", Price: types.MZN(9000), IsAvailable: true},
	}

	tests := []struct {
		name   string
		filter catalog.Filter
		want   []string
	}{
		{"default hides unavailable", catalog.Filter{}, []string{"Frango à Zambeziana", "2M"}},
		{"show unavailable", catalog.Filter{ShowUnavailable: true}, []string{"Frango à Zambeziana", "Matapa", "2M"}},
		{"category", catalog.Filter{CategoryID: drinks}, []string{"2M"}},
		{"search name", catalog.Filter{Search: "FRANGO"}, []string{"Frango à Zambeziana"}},
		{"search description", catalog.Filter{Search: "peanut", ShowUnavailable: true}, []string{"Matapa"}},
		{"no match", catalog.Filter{Search: "pizza"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.filter.Apply(products)
			if len(got) != len(tt.want) {
				t.Fatalf("len: got %d, want %d", len(got), len(tt.want))
			}
			for i, p := range got {
				if p.Name != tt.want[i] {
					t.Errorf("[%d]: got %q, want %q", i, p.Name, tt.want[i])
				}
			}
		})
	}
}
