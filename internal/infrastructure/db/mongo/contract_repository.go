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

const collectionContracts = "kontrak"

type ContractRepository struct {
	coll *mongo.Collection
}

func NewContractRepository(db *mongo.Database) *ContractRepository {
	return &ContractRepository{coll: db.Collection(collectionContracts)}
}

type mongoContract struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Number          string             `bson:"no_kontrak"`
	ContractDate    domain.Date        `bson:"tanggal_kontrak"`
	Value           float64            `bson:"nilai_kontrak"`
	StartDate       domain.Date        `bson:"start_date"`
	EndDate         domain.Date        `bson:"end_date"`
	JobName         string             `bson:"nama_pekerjaan"`
	CustomerName    string             `bson:"nama_customer"`
	TransactionType string             `bson:"jenis_transaksi"`
	Segment         string             `bson:"segmen"`
	PICName         *string            `bson:"pic_name,omitempty"`
	FileKey         *string            `bson:"file_path,omitempty"`
	CreatedAt       time.Time          `bson:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at"`
}

func toMongoContract(k *domain.Contract) mongoContract {
	return mongoContract{
		Number:          k.Number,
		ContractDate:    k.ContractDate,
		Value:           k.Value,
		StartDate:       k.StartDate,
		EndDate:         k.EndDate,
		JobName:         k.JobName,
		CustomerName:    k.CustomerName,
		TransactionType: string(k.TransactionType),
		Segment:         string(k.Segment),
		PICName:         k.PICName,
		FileKey:         k.FileKey,
		CreatedAt:       k.CreatedAt.UTC(),
		UpdatedAt:       k.UpdatedAt.UTC(),
	}
}

func (mk mongoContract) toDomain() domain.Contract {
	k := domain.Contract{
		ID:              mk.ID.Hex(),
		Number:          mk.Number,
		ContractDate:    mk.ContractDate,
		Value:           mk.Value,
		StartDate:       mk.StartDate,
		EndDate:         mk.EndDate,
		JobName:         mk.JobName,
		CustomerName:    mk.CustomerName,
		TransactionType: domain.TransactionType(mk.TransactionType),
		Segment:         domain.Segment(mk.Segment),
		PICName:         mk.PICName,
		FileKey:         mk.FileKey,
		CreatedAt:       mk.CreatedAt.UTC(),
		UpdatedAt:       mk.UpdatedAt.UTC(),
	}
	k.Derive()
	return k
}

func (r *ContractRepository) Create(ctx context.Context, k *domain.Contract) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoContract(k)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: no_kontrak %q", domain.ErrDuplicate, k.Number)
		}
		return fmt.Errorf("insert contract: %w", err)
	}
	k.ID = doc.ID.Hex()
	k.Derive()
	return nil
}

func (r *ContractRepository) FindByID(ctx context.Context, id string) (*domain.Contract, error) {
	oid, err := objectID(id, domain.ErrContractNotFound)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mk mongoContract
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mk); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrContractNotFound
		}
		return nil, fmt.Errorf("find contract: %w", err)
	}
	k := mk.toDomain()
	return &k, nil
}

func (r *ContractRepository) ExistsNumber(ctx context.Context, number string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"no_kontrak": number}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count contracts: %w", err)
	}
	return n > 0, nil
}

func (r *ContractRepository) List(ctx context.Context) ([]domain.Contract, error) {
	return r.find(ctx, bson.M{})
}

func (r *ContractRepository) ListWithFiles(ctx context.Context) ([]domain.Contract, error) {
	return r.find(ctx, bson.M{"file_path": bson.M{"$exists": true, "$nin": bson.A{nil, ""}}})
}

func (r *ContractRepository) find(ctx context.Context, filter bson.M) ([]domain.Contract, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find contracts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoContract
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contracts: %w", err)
	}
	out := make([]domain.Contract, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *ContractRepository) Update(ctx context.Context, k *domain.Contract) error {
	oid, err := objectID(k.ID, domain.ErrContractNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoContract(k)
	set := bson.M{
		"no_kontrak":      doc.Number,
		"tanggal_kontrak": doc.ContractDate,
		"nilai_kontrak":   doc.Value,
		"start_date":      doc.StartDate,
		"end_date":        doc.EndDate,
		"nama_pekerjaan":  doc.JobName,
		"nama_customer":   doc.CustomerName,
		"jenis_transaksi": doc.TransactionType,
		"segmen":          doc.Segment,
		"updated_at":      doc.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if doc.PICName != nil && *doc.PICName != "" {
		set["pic_name"] = *doc.PICName
	} else {
		update["$unset"] = bson.M{"pic_name": ""}
	}

	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: no_kontrak %q", domain.ErrDuplicate, k.Number)
		}
		return fmt.Errorf("update contract: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrContractNotFound
	}
	return nil
}

func (r *ContractRepository) SetFile(ctx context.Context, id, key string, at time.Time) error {
	oid, err := objectID(id, domain.ErrContractNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{"file_path": key, "updated_at": at.UTC()}})
	if err != nil {
		return fmt.Errorf("set contract file: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrContractNotFound
	}
	return nil
}

func (r *ContractRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, domain.ErrContractNotFound)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete contract: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrContractNotFound
	}
	return nil
}

func (r *ContractRepository) MaxUpdatedAt(ctx context.Context) (time.Time, error) {
	return maxUpdatedAt(ctx, r.coll, bson.M{})
}
