package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/untangle-ph/untangle-backend/internal/environment"
	"github.com/untangle-ph/untangle-backend/internal/models"
	"github.com/untangle-ph/untangle-backend/internal/utils"
	"github.com/untangle-ph/untangle-backend/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Imports legacy member purchase history from a CSV export.
//
// Expected columns: mobile, full_name, plan_name, hours, amount, purchase_date
// (YYYY-MM-DD). Members are created on first sight; repeated rows accumulate
// onto the same member's balance.
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	mongoURI := environment.GetEnv("MONGODB_URI", "")
	if mongoURI == "" {
		log.Fatal("MONGODB_URI environment variable is required")
	}
	dbName := environment.GetEnv("MONGODB_DATABASE", "untangle")

	if len(os.Args) < 2 {
		log.Fatal("CSV file path is required as a command line argument")
	}
	csvFilePath := os.Args[1]

	client, err := mongodb.NewClient(context.Background(), mongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(dbName)

	if err := importData(db, csvFilePath); err != nil {
		log.Fatalf("Failed to import data: %v", err)
	}

	log.Println("Data imported successfully")
}

func importData(db *mongo.Database, csvFilePath string) error {
	file, err := os.Open(csvFilePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to parse CSV file: %v", err)
	}

	if len(records) < 2 {
		return fmt.Errorf("CSV file is empty or has only header")
	}

	membersCollection := db.Collection("members")
	purchasesCollection := db.Collection("purchases")

	for i, record := range records {
		// Skip header
		if i == 0 {
			continue
		}

		if len(record) < 6 {
			log.Printf("Warning: Record %d has less than 6 fields, skipping", i)
			continue
		}

		mobile, err := utils.NormalizeMobile(record[0])
		if err != nil {
			log.Printf("Warning: Record %d has invalid mobile %q, skipping", i, record[0])
			continue
		}
		fullName := record[1]
		planName := record[2]
		hours, err := strconv.ParseFloat(record[3], 64)
		if err != nil || hours <= 0 {
			log.Printf("Warning: Record %d has invalid hours, skipping", i)
			continue
		}
		amount, err := strconv.ParseFloat(record[4], 64)
		if err != nil || amount < 0 {
			log.Printf("Warning: Record %d has invalid amount, skipping", i)
			continue
		}
		purchaseDate, err := time.Parse("2006-01-02", record[5])
		if err != nil {
			log.Printf("Warning: Record %d has invalid date format, skipping", i)
			continue
		}

		purchase := models.Purchase{
			Mobile:         mobile,
			PlanName:       planName,
			HoursGranted:   utils.RoundHours(hours),
			AmountPaid:     amount,
			PurchaseDate:   purchaseDate,
			RolloverStatus: models.RolloverPending,
			CreatedAt:      time.Now(),
			UpdatedAt:      time.Now(),
		}
		purchase.CalculateExpiryDates()

		var member models.Member
		err = membersCollection.FindOne(context.Background(), bson.M{"mobile": mobile}).Decode(&member)
		if err != nil {
			member = models.Member{
				Mobile:           mobile,
				FullName:         fullName,
				CurrentPlan:      planName,
				HoursGranted:     purchase.HoursGranted,
				HoursUsed:        0,
				ExpiryDate:       &purchase.ExpiryDate,
				RegistrationDate: utils.DateOf(purchaseDate),
				Notes:            "Imported from CSV",
				CreatedAt:        time.Now(),
				UpdatedAt:        time.Now(),
			}
			res, err := membersCollection.InsertOne(context.Background(), member)
			if err != nil {
				log.Printf("Warning: Failed to create member for record %d: %v", i, err)
				continue
			}
			if id, ok := res.InsertedID.(primitive.ObjectID); ok {
				member.ID = id
			}
		} else {
			update := bson.M{
				"$inc": bson.M{"hoursGranted": purchase.HoursGranted},
				"$set": bson.M{
					"currentPlan": planName,
					"updatedAt":   time.Now(),
				},
			}
			if member.ExpiryDate == nil || purchase.ExpiryDate.After(*member.ExpiryDate) {
				update["$max"] = bson.M{"expiryDate": purchase.ExpiryDate}
			}
			_, err = membersCollection.UpdateOne(context.Background(), bson.M{"mobile": mobile}, update)
			if err != nil {
				log.Printf("Warning: Failed to update member for record %d: %v", i, err)
				continue
			}
		}

		purchase.MemberID = member.ID
		if _, err := purchasesCollection.InsertOne(context.Background(), purchase); err != nil {
			log.Printf("Warning: Failed to create purchase for record %d: %v", i, err)
			continue
		}
	}

	return nil
}
