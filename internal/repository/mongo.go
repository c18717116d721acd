package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/isdelr/shopdesk-be/internal/database"
	"github.com/isdelr/shopdesk-be/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements Store on top of a MongoDB database. The unique
// indexes created by database.EnsureMongoIndexes back ErrDuplicate.
type MongoStore struct {
	client      *mongo.Client
	accounts    *mongo.Collection
	invoices    *mongo.Collection
	customers   *mongo.Collection
	inventory   *mongo.Collection
	shopProfile *mongo.Collection
}

// NewMongoStore wraps the named database of client.
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	db := client.Database(dbName)
	return &MongoStore{
		client:      client,
		accounts:    db.Collection(database.AccountsCollection),
		invoices:    db.Collection(database.InvoicesCollection),
		customers:   db.Collection(database.CustomersCollection),
		inventory:   db.Collection(database.InventoryCollection),
		shopProfile: db.Collection(database.ShopProfileCollection),
	}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mongoErr maps driver errors onto the package sentinels.
func mongoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

func (s *MongoStore) InsertAccountIfAbsent(ctx context.Context, account models.Account) error {
	_, err := s.accounts.InsertOne(ctx, account)
	return mongoErr(err)
}

func (s *MongoStore) FindAccountByEmail(ctx context.Context, email string) (models.Account, error) {
	var account models.Account
	err := s.accounts.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	return account, mongoErr(err)
}

func (s *MongoStore) FindAccountByID(ctx context.Context, id string) (models.Account, error) {
	var account models.Account
	err := s.accounts.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	return account, mongoErr(err)
}

func (s *MongoStore) FindMaxInvoiceID(ctx context.Context, prefix string, width int) (string, error) {
	filter := bson.M{"invoiceId": bson.M{"$regex": InvoiceIDPattern(prefix, width).String()}}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "invoiceId", Value: -1}}).
		SetProjection(bson.M{"invoiceId": 1})

	var doc struct {
		InvoiceID string `bson:"invoiceId"`
	}
	err := s.invoices.FindOne(ctx, filter, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return doc.InvoiceID, nil
}

func (s *MongoStore) InsertInvoice(ctx context.Context, invoice models.Invoice) error {
	_, err := s.invoices.InsertOne(ctx, invoice)
	return mongoErr(err)
}

func (s *MongoStore) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	if err := findAll(ctx, s.invoices, &invoices, "invoiceId"); err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *MongoStore) FindInvoiceByInvoiceID(ctx context.Context, invoiceID string) (models.Invoice, error) {
	var invoice models.Invoice
	err := s.invoices.FindOne(ctx, bson.M{"invoiceId": invoiceID}).Decode(&invoice)
	return invoice, mongoErr(err)
}

func (s *MongoStore) UpdateInvoice(ctx context.Context, invoice models.Invoice) error {
	update := bson.M{"$set": bson.M{
		"customer":      invoice.Customer,
		"date":          invoice.Date,
		"items":         invoice.Items,
		"grandTotal":    invoice.GrandTotal,
		"paymentStatus": invoice.PaymentStatus,
		"updatedAt":     invoice.UpdatedAt,
	}}
	res, err := s.invoices.UpdateOne(ctx, bson.M{"invoiceId": invoice.InvoiceID}, update)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	customers := []models.Customer{}
	if err := findAll(ctx, s.customers, &customers, "createdAt"); err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *MongoStore) InsertCustomer(ctx context.Context, customer models.Customer) error {
	_, err := s.customers.InsertOne(ctx, customer)
	return mongoErr(err)
}

func (s *MongoStore) FindCustomerByID(ctx context.Context, id string) (models.Customer, error) {
	var customer models.Customer
	err := s.customers.FindOne(ctx, bson.M{"_id": id}).Decode(&customer)
	return customer, mongoErr(err)
}

func (s *MongoStore) UpdateCustomer(ctx context.Context, customer models.Customer) error {
	return replaceByID(ctx, s.customers, customer.ID, customer)
}

func (s *MongoStore) DeleteCustomer(ctx context.Context, id string) error {
	return deleteByID(ctx, s.customers, id)
}

func (s *MongoStore) ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}
	if err := findAll(ctx, s.inventory, &items, "createdAt"); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *MongoStore) InsertInventoryItem(ctx context.Context, item models.InventoryItem) error {
	_, err := s.inventory.InsertOne(ctx, item)
	return mongoErr(err)
}

func (s *MongoStore) FindInventoryItemByID(ctx context.Context, id string) (models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.inventory.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	return item, mongoErr(err)
}

func (s *MongoStore) UpdateInventoryItem(ctx context.Context, item models.InventoryItem) error {
	return replaceByID(ctx, s.inventory, item.ID, item)
}

func (s *MongoStore) DeleteInventoryItem(ctx context.Context, id string) error {
	return deleteByID(ctx, s.inventory, id)
}

func (s *MongoStore) FindShopProfile(ctx context.Context) (models.ShopProfile, error) {
	var profile models.ShopProfile
	err := s.shopProfile.FindOne(ctx, bson.M{"_id": models.ShopProfileID}).Decode(&profile)
	return profile, mongoErr(err)
}

func (s *MongoStore) SaveShopProfile(ctx context.Context, profile models.ShopProfile) error {
	profile.ID = models.ShopProfileID
	_, err := s.shopProfile.ReplaceOne(ctx, bson.M{"_id": profile.ID}, profile, options.Replace().SetUpsert(true))
	return mongoErr(err)
}

func findAll(ctx context.Context, coll *mongo.Collection, out any, sortField string) error {
	cursor, err := coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: sortField, Value: 1}}))
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

func replaceByID(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
