package loader

import "strings"

const (
	ColReceiptID    = "receipt_id"
	ColItemName     = "item_name"
	ColCategoryName = "category_name"
	ColPrice        = "price"
	ColQuantity     = "quantity"
	ColYear         = "year"
	ColMonth        = "month"
	ColDay          = "day"
	ColHour         = "hour"
	ColMinute       = "minute"
	ColSecond       = "second"
	ColWeekdayCode  = "weekday_code"
	ColGenderCode   = "gender_code"
	ColAgeCode      = "age_code"
)

var RequiredColumns = []string{
	ColReceiptID,
	ColItemName,
	ColCategoryName,
	ColPrice,
	ColQuantity,
	ColYear,
	ColMonth,
	ColDay,
	ColHour,
	ColMinute,
	ColSecond,
	ColWeekdayCode,
	ColGenderCode,
	ColAgeCode,
}

// headerAliases maps normalized source headers to canonical column names.
// The Japanese labels are the ones emitted by the store's POS export.
var headerAliases = map[string]string{
	"receipt":      ColReceiptID,
	"receipt_no":   ColReceiptID,
	"item":         ColItemName,
	"product":      ColItemName,
	"product_name": ColItemName,
	"category":     ColCategoryName,
	"amount":       ColPrice,
	"qty":          ColQuantity,
	"yyyy":         ColYear,
	"dd":           ColDay,
	"hh":           ColHour,
	"ss":           ColSecond,
	"weekday":      ColWeekdayCode,
	"gender":       ColGenderCode,
	"age":          ColAgeCode,
	"age_band":     ColAgeCode,

	"レシート番号":    ColReceiptID,
	"購入商品名":     ColItemName,
	"分類名":       ColCategoryName,
	"値段":        ColPrice,
	"個数":        ColQuantity,
	"曜日フラグ":     ColWeekdayCode,
	"購入者性別フラグ":  ColGenderCode,
	"購入者年齢フラグ":  ColAgeCode,
}

// caseSensitiveAliases resolve before lowercasing: the export uses "MM" for
// month and "mm" for minute.
var caseSensitiveAliases = map[string]string{
	"MM": ColMonth,
	"mm": ColMinute,
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	if canonical, ok := caseSensitiveAliases[h]; ok {
		return canonical
	}
	h = strings.ReplaceAll(strings.ToLower(h), " ", "_")
	if canonical, ok := headerAliases[h]; ok {
		return canonical
	}
	return h
}
