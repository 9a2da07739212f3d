package storage

import (
	"errors"
	"log/slog"

	"github.com/kareemadel/istithmar-backend/internal/models"
	"gorm.io/gorm"
)

const defaultValidityDays = 60

var seedCategories = []models.ProductCategory{
	{ID: 1, Name: "Refrigerators"},
	{ID: 2, Name: "iPhones"},
	{ID: 3, Name: "Samsung phones"},
	{ID: 4, Name: "AirPods"},
	{ID: 5, Name: "Headphones"},
	{ID: 6, Name: "Washing machines"},
}

var seedProducts = []models.Product{
	{ID: 101, CategoryID: 1, Title: "Sharp SJ-48C Refrigerator", Price: 200, DailyIncome: 60, Validity: defaultValidityDays, TotalQuantity: 50, SoldCount: 5, PurchaseLimit: 2},
	{ID: 102, CategoryID: 1, Title: "Beko DNE50 Refrigerator", Price: 600, DailyIncome: 140, Validity: defaultValidityDays, TotalQuantity: 40, SoldCount: 8, PurchaseLimit: 2},
	{ID: 103, CategoryID: 1, Title: "LG GNM-C622 Refrigerator", Price: 1000, DailyIncome: 350, Validity: defaultValidityDays, TotalQuantity: 30, SoldCount: 3, PurchaseLimit: 1},
	{ID: 104, CategoryID: 1, Title: "Samsung RT46K Refrigerator", Price: 1500, DailyIncome: 430, Validity: defaultValidityDays, TotalQuantity: 20, SoldCount: 2, PurchaseLimit: 1},
	{ID: 105, CategoryID: 1, Title: "Tornado RF-58T Refrigerator", Price: 2000, DailyIncome: 600, Validity: defaultValidityDays, TotalQuantity: 15, SoldCount: 1, PurchaseLimit: 1},
	{ID: 106, CategoryID: 1, Title: "Hisense RS670 Refrigerator", Price: 12000, DailyIncome: 400, Validity: defaultValidityDays, TotalQuantity: 10, SoldCount: 0, PurchaseLimit: 1},
	{ID: 201, CategoryID: 2, Title: "iPhone 13", Price: 15000, DailyIncome: 500, Validity: defaultValidityDays, TotalQuantity: 30, SoldCount: 6, PurchaseLimit: 1},
	{ID: 202, CategoryID: 2, Title: "iPhone 13 Pro", Price: 20000, DailyIncome: 680, Validity: defaultValidityDays, TotalQuantity: 25, SoldCount: 5, PurchaseLimit: 1},
	{ID: 203, CategoryID: 2, Title: "iPhone 14", Price: 25000, DailyIncome: 850, Validity: defaultValidityDays, TotalQuantity: 20, SoldCount: 4, PurchaseLimit: 1},
	{ID: 301, CategoryID: 3, Title: "Samsung Galaxy S22", Price: 18000, DailyIncome: 600, Validity: defaultValidityDays, TotalQuantity: 30, SoldCount: 3, PurchaseLimit: 1},
	{ID: 401, CategoryID: 4, Title: "AirPods Pro", Price: 5000, DailyIncome: 170, Validity: defaultValidityDays, TotalQuantity: 60, SoldCount: 12, PurchaseLimit: 2},
	{ID: 601, CategoryID: 6, Title: "LG Vivace Washing Machine", Price: 9000, DailyIncome: 300, Validity: defaultValidityDays, TotalQuantity: 25, SoldCount: 2, PurchaseLimit: 1},
}

var seedConfig = []models.SiteConfig{
	{Key: KeyWithdrawal24h, Value: "false", Type: "bool"},
	{Key: KeyWithdrawalStartHour, Value: "10", Type: "int"},
	{Key: KeyWithdrawalEndHour, Value: "18", Type: "int"},
	{Key: KeyReceiverWallet, Value: "01206998667", Type: "string"},
	{Key: "banners", Value: "[]", Type: "json"},
	{Key: "customer_service_links", Value: "[]", Type: "json"},
}

// Seed inserts the default catalog and site configuration. Existing rows are
// left untouched, so operator edits survive restarts.
func Seed(db *gorm.DB) error {
	seeded := 0

	for _, c := range seedCategories {
		if err := insertIfAbsent(db, &models.ProductCategory{}, "id = ?", c.ID, &c, &seeded); err != nil {
			return err
		}
	}
	for _, p := range seedProducts {
		if err := insertIfAbsent(db, &models.Product{}, "id = ?", p.ID, &p, &seeded); err != nil {
			return err
		}
	}
	for _, c := range seedConfig {
		if err := insertIfAbsent(db, &models.SiteConfig{}, "key = ?", c.Key, &c, &seeded); err != nil {
			return err
		}
	}

	if seeded > 0 {
		slog.Info("seeded catalog and site config", "new", seeded)
	}
	return nil
}

func insertIfAbsent(db *gorm.DB, probe interface{}, cond string, key interface{}, row interface{}, seeded *int) error {
	err := db.Where(cond, key).First(probe).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err := db.Create(row).Error; err != nil {
		return err
	}
	*seeded++
	return nil
}
