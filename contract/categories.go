package contract

import "strings"

type categoryRule struct {
	keys []string
	main string
	sub  string
}

var categoryRules = []categoryRule{
	{[]string{"laptop", "notebook", "macbook", "xps"}, "إلكترونيات", "حاسبات محمولة"},
	{[]string{"phone", "smartphone", "iphone", "galaxy", "xiaomi"}, "إلكترونيات", "هواتف ذكية"},
	{[]string{"headphone", "earbud", "earphone", "airpods"}, "إلكترونيات", "سماعات"},
	{[]string{"camera", "dslr", "mirrorless", "gopro"}, "إلكترونيات", "كاميرات"},
	{[]string{"coffee", "espresso", "kettle", "blender", "mixer"}, "أجهزة منزلية", "أدوات مطبخ"},
	{[]string{"shampoo", "cream", "skincare", "lotion", "serum"}, "العناية الشخصية", "عناية البشرة"},
	{[]string{"toy", "lego", "puzzle", "doll"}, "ألعاب", "ألعاب أطفال"},
	{[]string{"shoe", "sneaker", "boot", "sandals"}, "أزياء", "أحذية"},
	{[]string{"watch", "smartwatch", "fitbit", "garmin"}, "إكسسوارات", "ساعات"},
	{[]string{"compressor", "pump", "tire", "tyre"}, "صيانة السيارات", "معدات"},
	{[]string{"game", "sims", "electronic arts", "plumbob"}, "ألعاب", "ألعاب فيديو"},
	{[]string{"background", "wallpaper", "texture"}, "تصميم", "خلفيات"},
	{[]string{"clothing", "shirt", "pants", "dress", "jacket"}, "أزياء", "ملابس"},
	{[]string{"furniture", "chair", "table", "sofa", "bed"}, "أثاث", "أثاث منزلي"},
	{[]string{"book", "magazine", "newspaper"}, "كتب", "مطبوعات"},
	{[]string{"food", "drink", "beverage"}, "طعام", "مشروبات"},
}

// GuessCategories derives an Arabic category pair from vision labels and
// the product title, falling back to the generic pair.
func GuessCategories(labels []string, title string) (main, sub string, trail []string) {
	text := strings.ToLower(title + " " + strings.Join(labels, " "))
	for _, rule := range categoryRules {
		for _, k := range rule.keys {
			if strings.Contains(text, k) {
				return rule.main, rule.sub, []string{rule.main, rule.sub}
			}
		}
	}
	return "منتجات", "عام", []string{"منتجات", "عام"}
}
