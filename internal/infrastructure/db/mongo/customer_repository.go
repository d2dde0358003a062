package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

const collectionCustomers = "pelanggan"

type CustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{coll: db.Collection(collectionCustomers)}
}

type mongoCustomer struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	AccountNumber   string             `bson:"no_akun"`
	Name            string             `bson:"nama_pelanggan"`
	AMID            string             `bson:"am_id"`
	Product         string             `bson:"produk"`
	Category        string             `bson:"kategori"`
	StartDate       domain.Date        `bson:"start_date"`
	EndDate         domain.Date        `bson:"end_date"`
	BilledAmount    float64            `bson:"jumlah_tagihan"`
	InvoiceStatus   string             `bson:"status_invoice"`
	PaymentProgress float64            `bson:"progres_pembayaran"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func toMongoCustomer(c *domain.Customer) mongoCustomer {
	return mongoCustomer{
		AccountNumber:   c.AccountNumber,
		Name:            c.Name,
		AMID:            c.AMID,
		Product:         c.Product,
		Category:        string(c.Category),
		StartDate:       c.StartDate,
		EndDate:         c.EndDate,
		BilledAmount:    c.BilledAmount,
		InvoiceStatus:   string(c.InvoiceStatus),
		PaymentProgress: c.PaymentProgress,
		CreatedAt:       c.CreatedAt.UTC(),
		UpdatedAt:       c.UpdatedAt.UTC(),
	}
}

func (mc mongoCustomer) toDomain() domain.Customer {
	c := domain.Customer{
		ID:              mc.ID.Hex(),
		AccountNumber:   mc.AccountNumber,
		Name:            mc.Name,
		AMID:            mc.AMID,
		Product:         mc.Product,
		Category:        domain.Category(mc.Category),
		StartDate:       mc.StartDate,
		EndDate:         mc.EndDate,
		BilledAmount:    mc.BilledAmount,
		InvoiceStatus:   domain.InvoiceStatus(mc.InvoiceStatus),
		PaymentProgress: mc.PaymentProgress,
		CreatedAt:       mc.CreatedAt.UTC(),
		UpdatedAt:       mc.UpdatedAt.UTC(),
	}
	c.Derive()
	return c
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoCustomer(c)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: no_akun %q", domain.ErrDuplicate, c.AccountNumber)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	c.ID = doc.ID.Hex()
	c.Derive()
	return nil
}

// InsertMany inserts cs in one ordered batch. If any insert fails the
// documents already written by this call are removed again.
func (r *CustomerRepository) InsertMany(ctx context.Context, cs []domain.Customer) error {
	if len(cs) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	docs := make([]any, len(cs))
	ids := make([]primitive.ObjectID, len(cs))
	for i := range cs {
		d := toMongoCustomer(&cs[i])
		d.ID = primitive.NewObjectID()
		ids[i] = d.ID
		docs[i] = d
	}

	if _, err := r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		if _, delErr := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); delErr != nil {
			return fmt.Errorf("insert customers: %w (rollback failed: %v)", err, delErr)
		}
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert customers: %w", err)
	}

	for i := range cs {
		cs[i].ID = ids[i].Hex()
	}
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*domain.Customer, error) {
	oid, err := objectID(id, domain.ErrCustomerNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCustomer
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	c := mc.toDomain()
	return &c, nil
}

func (r *CustomerRepository) List(ctx context.Context, amID string) ([]domain.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if amID != "" {
		filter["am_id"] = amID
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find customers: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoCustomer
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode customers: %w", err)
	}
	out := make([]domain.Customer, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *CustomerRepository) UpdatePayment(ctx context.Context, id string, invoice domain.InvoiceStatus, progress float64, at time.Time) (*domain.Customer, error) {
	oid, err := objectID(id, domain.ErrCustomerNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status_invoice":     string(invoice),
		"progres_pembayaran": progress,
		"updated_at":         at.UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mc mongoCustomer
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, fmt.Errorf("update customer: %w", err)
	}
	c := mc.toDomain()
	return &c, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrCustomerNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *CustomerRepository) ExistingAccountNumbers(ctx context.Context, numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	vals, err := r.coll.Distinct(ctx, "no_akun", bson.M{"no_akun": bson.M{"$in": numbers}})
	if err != nil {
		return nil, fmt.Errorf("lookup account numbers: %w", err)
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *CustomerRepository) MaxUpdatedAt(ctx context.Context, amID string) (time.Time, error) {
	filter := bson.M{}
	if amID != "" {
		filter["am_id"] = amID
	}
	return maxUpdatedAt(ctx, r.coll, filter)
}
