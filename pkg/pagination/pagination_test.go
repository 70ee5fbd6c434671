package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seq(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i + 1
	}
	return items
}

func TestSlice_WindowAndNextPages(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		page      int
		size      int
		wantItems []int
		wantNext  int
	}{
		{"first page of many", 20, 1, 6, []int{1, 2, 3, 4, 5, 6}, 3},
		{"middle page", 20, 2, 6, []int{7, 8, 9, 10, 11, 12}, 2},
		{"last partial page", 20, 4, 6, []int{19, 20}, 0},
		{"exact fit", 12, 2, 6, []int{7, 8, 9, 10, 11, 12}, 0},
		{"page past the end", 5, 3, 6, []int{}, 0},
		{"empty source", 0, 1, 6, []int{}, 0},
		{"size one", 3, 1, 1, []int{1}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slice(seq(tt.n), Params{PageNum: tt.page, PageSize: tt.size})

			assert.Equal(t, tt.wantItems, got.Items)
			assert.Equal(t, tt.wantNext, got.NextPagesAmount)
			assert.Equal(t, tt.page, got.PageNum)
			assert.Equal(t, tt.size, got.PageSize)
		})
	}
}

func TestSlice_Properties(t *testing.T) {
	for n := 0; n <= 25; n++ {
		for size := 1; size <= 7; size++ {
			for page := 1; page <= 8; page++ {
				got := Slice(seq(n), Params{PageNum: page, PageSize: size})

				wantLen := n - (page-1)*size
				if wantLen < 0 {
					wantLen = 0
				}
				if wantLen > size {
					wantLen = size
				}
				remaining := n - page*size
				if remaining < 0 {
					remaining = 0
				}
				wantNext := (remaining + size - 1) / size

				assert.Len(t, got.Items, wantLen, "n=%d page=%d size=%d", n, page, size)
				assert.Equal(t, wantNext, got.NextPagesAmount, "n=%d page=%d size=%d", n, page, size)
			}
		}
	}
}

func TestSlice_DoesNotAliasSource(t *testing.T) {
	items := seq(4)
	got := Slice(items, Params{PageNum: 1, PageSize: 2})
	got.Items[0] = 100

	assert.Equal(t, 1, items[0])
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Params{PageNum: 1, PageSize: 6}, Params{}.Normalize(DefaultPageNum, DefaultPageSize, 50))
	assert.Equal(t, Params{PageNum: 3, PageSize: 50}, Params{PageNum: 3, PageSize: 500}.Normalize(1, 6, 50))
	assert.Equal(t, Params{PageNum: 2, PageSize: 500}, Params{PageNum: 2, PageSize: 500}.Normalize(1, 6, 0))
}

func TestFromQueryAndMap(t *testing.T) {
	page := FromQuery([]int{7, 8}, 9, Params{PageNum: 2, PageSize: 2})
	assert.Equal(t, 3, page.NextPagesAmount)

	labels := Map(page, func(i int) string { return string(rune('a' + i)) })
	assert.Equal(t, []string{"h", "i"}, labels.Items)
	assert.Equal(t, 3, labels.NextPagesAmount)

	empty := FromQuery[int](nil, 0, Params{PageNum: 1, PageSize: 6})
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}

func TestValidAndOffset(t *testing.T) {
	assert.False(t, Params{PageNum: 0, PageSize: 6}.Valid())
	assert.False(t, Params{PageNum: 1, PageSize: 0}.Valid())
	assert.True(t, Params{PageNum: 1, PageSize: 1}.Valid())
	assert.Equal(t, 12, Params{PageNum: 3, PageSize: 6}.Offset())
}
