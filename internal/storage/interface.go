package storage

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/skinlog/internal/models"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist or is deleted.
	ErrNotFound = errors.New("not found")
	// ErrIndexOutOfRange is returned by list operations given a bad position.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrDuplicate is returned when a product is already in the target list.
	ErrDuplicate = errors.New("product already in list")
)

// ChangeFunc receives the scopes touched by a committed write.
type ChangeFunc func(scopes ...models.Scope)

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error
	// OnChange registers the hook called after every committed write.
	OnChange(ChangeFunc)

	// Products
	AddProduct(models.Product) error
	GetProduct(id string) (models.Product, error)
	GetAllProducts() ([]models.Product, error)
	GetAllProductsIncludingDeleted() ([]models.Product, error)
	UpdateProduct(models.Product) error
	ApplyProductChange(id string, change models.ProductFieldChange) error
	DeleteProduct(id string) error
	RestoreProduct(id string) error

	// Collections (Stash, WishList)
	GetCollection(kind models.CollectionKind) (models.Collection, error)
	AddToCollection(kind models.CollectionKind, productID string) error
	RemoveFromCollection(kind models.CollectionKind, index int) error
	MoveInCollection(kind models.CollectionKind, from, to int) error
	SetCollectionProducts(kind models.CollectionKind, productIDs []string) error

	// Routines
	AddRoutine(models.Routine) error
	GetRoutine(id string) (models.Routine, error)
	GetAllRoutines() ([]models.Routine, error)
	RenameRoutine(id, name string) error
	DeleteRoutine(id string) error
	AddRoutineProduct(routineID, productID string) error
	RemoveRoutineProduct(routineID string, index int) error
	MoveRoutineProduct(routineID string, from, to int) error

	// Logs and Applications
	// ResolveLog returns the log dated within [start, end], inserting
	// candidate when none exists. Find and insert share a transaction.
	ResolveLog(start, end time.Time, candidate models.Log) (models.Log, error)
	GetLogs(start, end time.Time) ([]models.Log, error)
	GetAllLogs() ([]models.Log, error)
	SaveLog(models.Log) error
	AddApplication(logID string, app models.Application) error
	DeleteApplication(id string) error

	// Routine Logs
	ResolveRoutineLog(start, end time.Time, candidate models.RoutineLog) (models.RoutineLog, error)
	GetRoutineLog(id string) (models.RoutineLog, error)
	GetRoutineLogs(start, end time.Time) ([]models.RoutineLog, error)
	GetAllRoutineLogs() ([]models.RoutineLog, error)
	SaveRoutineLog(models.RoutineLog) error
	UpdateRoutineLog(models.RoutineLog) error
	DeleteRoutineLog(id string) error
	AddRoutineLogProduct(routineLogID, productID string) error
	RemoveRoutineLogProduct(routineLogID string, index int) error
	MoveRoutineLogProduct(routineLogID string, from, to int) error

	// Utils
	GetConfigPath() string
}

// ChangeSource is implemented by stores that can report writes made
// outside this process. Watch blocks until ctx is done.
type ChangeSource interface {
	Watch(ctx context.Context, fn ChangeFunc) error
}
