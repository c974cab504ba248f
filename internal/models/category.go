package models

// CategoryText holds the bilingual labels shown for a category.
type CategoryText struct {
	TitleEN       string `json:"title_en"`
	TitleDA       string `json:"title_da"`
	SingularEN    string `json:"singular_en"`
	SingularDA    string `json:"singular_da"`
	PlaceholderEN string `json:"placeholder_en"`
	PlaceholderDA string `json:"placeholder_da"`
}

type Category struct {
	Base
	// Key is the storage key of the category, fixed when the category is created.
	Key          string `json:"key" gorm:"column:storage_key;uniqueIndex;size:64"`
	CategoryText `gorm:"embedded"`
	Icon         string `json:"icon"`
	ColorClass   string `json:"color_class"`
	Slots        int    `json:"slots"`
	// Unbounded categories keep a plain list of items without slot numbers.
	Unbounded bool `json:"unbounded"`
}

// PotluckCategory binds a category to a potluck. There is at most one binding per pair.
type PotluckCategory struct {
	Base
	PotluckID  string   `json:"potluck_id" gorm:"uniqueIndex:idx_potluck_category;size:36"`
	CategoryID string   `json:"category_id" gorm:"uniqueIndex:idx_potluck_category;size:36"`
	Category   Category `json:"category" gorm:"foreignKey:CategoryID"`
	SortOrder  int      `json:"sort_order"`
	IsEnabled  bool     `json:"is_enabled"`
}
