package repository

import (
	"context"
	"fmt"

	"aksara-bali-backend/internal/domains/aksara/model"
)

func strPtr(s string) *string { return &s }

// SampleAksara - dữ liệu mẫu cho môi trường dev
func SampleAksara() []model.Aksara {
	row := func(name, char, category, latin, code, usage, desc string) model.Aksara {
		return model.Aksara{
			Name:             name,
			Character:        char,
			Category:         category,
			Latin:            latin,
			UnicodeCodepoint: code,
			UsageExample:     strPtr(usage),
			Description:      strPtr(desc),
		}
	}

	return []model.Aksara{
		row("Aksara A", "ᬅ", "Aksara Suara", "a", "U+1B05", "ada, api, aduh", "Huruf vokal pertama dalam aksara Bali"),
		row("Aksara I", "ᬇ", "Aksara Suara", "i", "U+1B07", "iri, ikan, indah", "Huruf vokal I dalam aksara Bali"),
		row("Aksara U", "ᬉ", "Aksara Suara", "u", "U+1B09", "ulu, udang, umah", "Huruf vokal U dalam aksara Bali"),
		row("Aksara Ka", "ᬓ", "Aksara Wianjana", "ka", "U+1B13", "kaki, kuda, kucing", "Konsonan Ka dalam aksara Bali"),
		row("Aksara Ga", "ᬕ", "Aksara Wianjana", "ga", "U+1B15", "gajah, gula, guru", "Konsonan Ga dalam aksara Bali"),
		row("Aksara Na", "ᬦ", "Aksara Wianjana", "na", "U+1B26", "nama, nasi, nano", "Konsonan Na dalam aksara Bali"),
		row("Aksara Ma", "ᬫ", "Aksara Wianjana", "ma", "U+1B2B", "mama, makan, mata", "Konsonan Ma dalam aksara Bali"),
		row("Aksara Ya", "ᬬ", "Aksara Wianjana", "ya", "U+1B2C", "yang, yakin, yoga", "Konsonan Ya dalam aksara Bali"),
		row("Aksara Ra", "ᬭ", "Aksara Wianjana", "ra", "U+1B2D", "raja, rasa, rumah", "Konsonan Ra dalam aksara Bali"),
		row("Aksara La", "ᬮ", "Aksara Wianjana", "la", "U+1B2E", "laut, lima, laki", "Konsonan La dalam aksara Bali"),
	}
}

// Seed chèn SampleAksara khi bảng đang trống, trả về số row đã chèn
func Seed(ctx context.Context, repo Repository) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count aksara: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	inserted := 0
	for _, a := range SampleAksara() {
		if _, err := repo.Create(ctx, &a); err != nil {
			return inserted, fmt.Errorf("insert %s: %w", a.Name, err)
		}
		inserted++
	}
	return inserted, nil
}
