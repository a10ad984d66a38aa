package model

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name               string
		page, limit, total int
		wantPages          int
		wantNext, wantPrev bool
	}{
		{"empty", 1, 20, 0, 0, false, false},
		{"single partial page", 1, 20, 5, 1, false, false},
		{"exact multiple", 2, 10, 20, 2, false, true},
		{"middle page", 2, 10, 25, 3, true, true},
		{"beyond end", 7, 10, 25, 3, false, true},
		{"first of many", 1, 1, 100, 100, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, int(math.Ceil(float64(tt.total)/float64(tt.limit))), p.TotalPages)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.page < p.TotalPages, p.HasNext)
			assert.Equal(t, tt.wantPrev, p.HasPrev)
		})
	}
}

func TestParsePageAndLimit(t *testing.T) {
	assert.Equal(t, 1, ParsePage(""))
	assert.Equal(t, 1, ParsePage("abc"))
	assert.Equal(t, 1, ParsePage("0"))
	assert.Equal(t, 1, ParsePage("-3"))
	assert.Equal(t, 4, ParsePage("4"))
	assert.Equal(t, math.MaxInt32, ParsePage("99999999999"))

	assert.Equal(t, 20, ParseLimit(""))
	assert.Equal(t, 20, ParseLimit("x"))
	assert.Equal(t, 20, ParseLimit("0"))
	assert.Equal(t, 1, ParseLimit("1"))
	assert.Equal(t, 100, ParseLimit("100"))
	assert.Equal(t, 100, ParseLimit("500"))
}

func TestParseRandomCount(t *testing.T) {
	assert.Equal(t, 5, ParseRandomCount(""))
	assert.Equal(t, 5, ParseRandomCount("many"))
	assert.Equal(t, 1, ParseRandomCount("0"))
	assert.Equal(t, 12, ParseRandomCount("12"))
	assert.Equal(t, 20, ParseRandomCount("21"))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("15")
	require.NoError(t, err)
	assert.Equal(t, int64(15), id)

	for _, raw := range []string{"abc", "", "1.5", "0", "-2"} {
		_, err := ParseID(raw)
		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr, raw)
		assert.Equal(t, "Invalid ID format", vErr.Message)
	}
}

func TestValidate_MissingFieldsInDeclaredOrder(t *testing.T) {
	err := AksaraRequest{Latin: "ka"}.Validate()

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Missing required fields: nama, aksara_bali, kategori", vErr.Message)
	assert.Len(t, vErr.Fields, 3)
}

func TestValidate_Lengths(t *testing.T) {
	req := AksaraRequest{
		Name:             strings.Repeat("n", 101),
		Character:        "ᬓᬓᬓᬓᬓᬓᬓᬓᬓᬓ", // 10 runes, 30 bytes
		Category:         "Aksara Wianjana",
		Latin:            "ka",
		UnicodeCodepoint: strings.Repeat("U", 21),
	}

	var vErr *ValidationError
	require.ErrorAs(t, req.Validate(), &vErr)
	assert.Equal(t, "Validation failed", vErr.Message)
	assert.Contains(t, vErr.Fields, "nama")
	assert.Contains(t, vErr.Fields, "unicode_aksara")
	assert.NotContains(t, vErr.Fields, "aksara_bali")
}

func TestValidate_NameWithoutFileNameCharacters(t *testing.T) {
	for _, name := range []string{"...", ". .", "\t.\t"} {
		req := AksaraRequest{Name: name, Character: "ᬓ", Category: "Aksara Wianjana", Latin: "ka"}

		var vErr *ValidationError
		require.ErrorAs(t, req.Validate(), &vErr, name)
		assert.Equal(t, "Validation failed", vErr.Message)
		assert.Contains(t, vErr.Fields, "nama")
	}
}

func TestValidate_OK(t *testing.T) {
	req := AksaraRequest{Name: "Aksara Ka", Character: "ᬓ", Category: "Aksara Wianjana", Latin: "ka"}
	assert.NoError(t, req.Validate())
}

func TestToAksara_OptionalText(t *testing.T) {
	a := AksaraRequest{Name: "A", Description: "desc"}.ToAksara()
	assert.Nil(t, a.UsageExample)
	require.NotNil(t, a.Description)
	assert.Equal(t, "desc", *a.Description)
}

func TestToHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, ToHTTPStatus(NewValidationError("x")))
	assert.Equal(t, 400, ToHTTPStatus(ErrNoModelFile))
	assert.Equal(t, 404, ToHTTPStatus(ErrAksaraNotFound))
	assert.Equal(t, 404, ToHTTPStatus(ErrAlreadyDeleted))
	assert.Equal(t, 409, ToHTTPStatus(ErrDuplicateName))
	assert.Equal(t, 409, ToHTTPStatus(ErrModelKeyTaken))
	assert.Equal(t, 500, ToHTTPStatus(NewStorageError("Fetch aksara", errors.New("disk full"))))
}
