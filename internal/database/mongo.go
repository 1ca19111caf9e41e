package database

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"rdrupload/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(uri, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	slog.Debug("connected to receipt store", "database", dbName)

	return &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.Client.Disconnect(ctx)
}

// ReceiptStore writes one document per uploaded row.
type ReceiptStore struct {
	collection *mongo.Collection
}

// Receipts returns the store backed by the named collection.
func (m *MongoDB) Receipts(collectionName string) *ReceiptStore {
	return &ReceiptStore{collection: m.Database.Collection(collectionName)}
}

// EnsureIndexes creates the run/row lookup index if it is missing.
func (s *ReceiptStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "run_id", Value: 1}, {Key: "row", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create receipt index: %w", err)
	}
	return nil
}

// Record inserts a receipt.
func (s *ReceiptStore) Record(ctx context.Context, receipt models.Receipt) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := s.collection.InsertOne(ctx, receipt); err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}
	return nil
}

// FindByRun returns a run's receipts in row order. An empty runID returns all.
func (s *ReceiptStore) FindByRun(ctx context.Context, runID string) ([]models.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "row", Value: 1}})

	cursor, err := s.collection.Find(ctx, runFilter(runID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find receipts: %w", err)
	}
	defer cursor.Close(ctx)

	var receipts []models.Receipt
	if err := cursor.All(ctx, &receipts); err != nil {
		return nil, fmt.Errorf("failed to decode receipts: %w", err)
	}
	return receipts, nil
}

// Export streams a run's receipts, or all of them when runID is empty, to
// writer as BSON documents or JSON lines.
func (s *ReceiptStore) Export(ctx context.Context, writer io.Writer, format, runID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	cursor, err := s.collection.Find(ctx, runFilter(runID))
	if err != nil {
		return 0, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var data []byte
		if format == "json" {
			var receipt models.Receipt
			if err := cursor.Decode(&receipt); err != nil {
				return count, fmt.Errorf("failed to decode document: %w", err)
			}
			data, err = json.Marshal(receipt)
			if err != nil {
				return count, fmt.Errorf("failed to marshal to JSON: %w", err)
			}
			data = append(data, '\n')
		} else {
			data = cursor.Current
		}

		if _, err := writer.Write(data); err != nil {
			return count, fmt.Errorf("failed to write export data: %w", err)
		}
		count++

		if count%1000 == 0 {
			slog.Info("exporting receipts", "written", count)
		}
	}

	if err := cursor.Err(); err != nil {
		return count, fmt.Errorf("cursor error: %w", err)
	}

	return count, nil
}

func runFilter(runID string) bson.M {
	if runID == "" {
		return bson.M{}
	}
	return bson.M{"run_id": runID}
}
