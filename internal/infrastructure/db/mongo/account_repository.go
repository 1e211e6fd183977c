package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/keyforge/licensing-system/internal/core/domain"
)

const accountsCollection = "accounts"

const (
	loginIndexName = "login_unique"
	hwidIndexName  = "hwid_unique"
)

// AccountRepository implements ports.AccountRepository on MongoDB. Uniqueness
// of login and hwid is enforced by unique indexes, so a losing concurrent
// registration fails at commit time instead of violating the invariants.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountsCollection)}
}

type mongoAccount struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Login    string             `bson:"login"`
	HWID     string             `bson:"hwid"`
	TimeLeft int64              `bson:"time_left"`
}

func (a mongoAccount) toDomain() *domain.Account {
	return &domain.Account{Login: a.Login, HWID: a.HWID, TimeLeft: a.TimeLeft}
}

// EnsureIndexes creates the unique indexes on login and hwid. Must run before
// the first request is served; the binding resolver depends on them.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "login", Value: 1}},
			Options: options.Index().SetName(loginIndexName).SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "hwid", Value: 1}},
			Options: options.Index().SetName(hwidIndexName).SetUnique(true),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *AccountRepository) FindByLogin(ctx context.Context, login string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var acc mongoAccount
	if err := r.coll.FindOne(ctx, bson.M{"login": login}).Decode(&acc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storeErr("find account by login", err)
	}
	return acc.toDomain(), nil
}

func (r *AccountRepository) FindByHWID(ctx context.Context, hwid string) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var acc mongoAccount
	if err := r.coll.FindOne(ctx, bson.M{"hwid": hwid}).Decode(&acc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, storeErr("find account by hwid", err)
	}
	return acc.toDomain(), nil
}

func (r *AccountRepository) Create(ctx context.Context, acc *domain.Account) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoAccount{Login: acc.Login, HWID: acc.HWID, TimeLeft: acc.TimeLeft}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return classifyDuplicateKey(err)
		}
		return storeErr("insert account", err)
	}
	return nil
}

// ConsumeTime is the single-record atomic read-modify-write for balance
// deduction: the filter only matches when the hwid is the bound one and the
// balance covers the deduction, so two racing calls can never both succeed
// against the same starting balance.
func (r *AccountRepository) ConsumeTime(ctx context.Context, login, hwid string, minutes int64) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"login":     login,
		"hwid":      hwid,
		"time_left": bson.M{"$gte": minutes},
	}
	update := bson.M{"$inc": bson.M{"time_left": -minutes}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var acc mongoAccount
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&acc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.resolveMiss(ctx, login, hwid, true)
		}
		return nil, storeErr("consume time", err)
	}
	return acc.toDomain(), nil
}

func (r *AccountRepository) SetTime(ctx context.Context, login, hwid string, minutes int64) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"login": login, "hwid": hwid}
	update := bson.M{"$set": bson.M{"time_left": minutes}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var acc mongoAccount
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&acc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.resolveMiss(ctx, login, hwid, false)
		}
		return nil, storeErr("set time", err)
	}
	return acc.toDomain(), nil
}

func (r *AccountRepository) Delete(ctx context.Context, login string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"login": login})
	if err != nil {
		return storeErr("delete account", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// resolveMiss disambiguates a conditional-update miss with a follow-up point
// read. Order matters: the hwid gate must be reported before the balance so a
// wrong-hwid caller learns nothing about the account's funds.
func (r *AccountRepository) resolveMiss(ctx context.Context, login, hwid string, balanceGuarded bool) error {
	acc, err := r.FindByLogin(ctx, login)
	if err != nil {
		return err
	}
	if acc.HWID != hwid {
		return domain.ErrHWIDMismatch
	}
	if balanceGuarded {
		return domain.ErrInsufficientBalance
	}
	// The record matched on re-read; the update raced with a delete.
	return domain.ErrAccountNotFound
}

// classifyDuplicateKey maps a unique-index violation to the constraint that
// caused it. Mongo duplicate-key messages carry the index name.
func classifyDuplicateKey(err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if strings.Contains(e.Message, hwidIndexName) {
				return domain.ErrHWIDTaken
			}
		}
	}
	if strings.Contains(err.Error(), hwidIndexName) {
		return domain.ErrHWIDTaken
	}
	return domain.ErrLoginExists
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
