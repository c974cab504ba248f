package database

import (
	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultCategories is the catalog a fresh database starts with.
func DefaultCategories() []models.Category {
	return []models.Category{
		{
			Key: "main-dishes",
			CategoryText: models.CategoryText{
				TitleEN: "Main Dishes", TitleDA: "Hovedretter",
				SingularEN: "Main dish", SingularDA: "Hovedret",
				PlaceholderEN: "e.g. Lasagna", PlaceholderDA: "f.eks. Lasagne",
			},
			Icon: "utensils", ColorClass: "orange", Slots: 4,
		},
		{
			Key: "side-dishes",
			CategoryText: models.CategoryText{
				TitleEN: "Side Dishes", TitleDA: "Tilbehør",
				SingularEN: "Side dish", SingularDA: "Tilbehør",
				PlaceholderEN: "e.g. Potato salad", PlaceholderDA: "f.eks. Kartoffelsalat",
			},
			Icon: "salad", ColorClass: "green", Slots: 3,
		},
		{
			Key: "desserts",
			CategoryText: models.CategoryText{
				TitleEN: "Desserts", TitleDA: "Desserter",
				SingularEN: "Dessert", SingularDA: "Dessert",
				PlaceholderEN: "e.g. Apple pie", PlaceholderDA: "f.eks. Æblekage",
			},
			Icon: "cake", ColorClass: "pink", Slots: 3,
		},
		{
			Key: "drinks",
			CategoryText: models.CategoryText{
				TitleEN: "Drinks", TitleDA: "Drikkevarer",
				SingularEN: "Drink", SingularDA: "Drik",
				PlaceholderEN: "e.g. Lemonade", PlaceholderDA: "f.eks. Saftevand",
			},
			Icon: "cup", ColorClass: "blue", Slots: 2,
		},
		{
			Key: "additional-items",
			CategoryText: models.CategoryText{
				TitleEN: "Additional Items", TitleDA: "Andet",
				SingularEN: "Item", SingularDA: "Ting",
				PlaceholderEN: "e.g. Napkins", PlaceholderDA: "f.eks. Servietter",
			},
			Icon: "basket", ColorClass: "gray", Unbounded: true,
		},
	}
}

// SeedCategories fills an empty catalog with DefaultCategories.
func SeedCategories(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	categories := DefaultCategories()
	if err := db.Create(&categories).Error; err != nil {
		return err
	}
	logrus.Infof("Seeded %d default categories", len(categories))
	return nil
}
