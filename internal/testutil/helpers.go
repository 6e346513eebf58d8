package testutil

import (
	"database/sql"
	"math/rand"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/google/uuid"

	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/repository"
	"github.com/mvandermeer/Wash-Sale-Tracker-Backend/internal/service"
)

// NewTestEntryService wires an EntryService against the given test database.
func NewTestEntryService(t *testing.T, db *sql.DB) *service.EntryService {
	t.Helper()

	entryRepo := repository.NewEntryRepository(db)
	return service.NewEntryService(entryRepo)
}

// NewTestAttachmentService wires an AttachmentService without encryption.
func NewTestAttachmentService(t *testing.T, db *sql.DB) *service.AttachmentService {
	t.Helper()

	attachmentRepo := repository.NewAttachmentRepository(db)
	return service.NewAttachmentService(attachmentRepo, nil)
}

// NewTestAttachmentServiceWithKey wires an AttachmentService with a freshly
// generated fernet key for at-rest encryption tests.
func NewTestAttachmentServiceWithKey(t *testing.T, db *sql.DB) (*service.AttachmentService, *fernet.Key) {
	t.Helper()

	var key fernet.Key
	if err := key.Generate(); err != nil {
		t.Fatalf("Failed to generate fernet key: %v", err)
	}

	attachmentRepo := repository.NewAttachmentRepository(db)
	return service.NewAttachmentService(attachmentRepo, &key), &key
}

// NewTestSystemService wires a SystemService against the given test database.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for use in tests.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakeAccount generates a unique account identifier for testing.
//
// Example usage:
//
//	account := testutil.MakeAccount("ACCT")
//	// Returns: "ACCT-1A2B3C"
func MakeAccount(prefix string) string {
	if prefix == "" {
		prefix = "ACCT"
	}
	return prefix + "-" + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}

// Brokers frequently used in tests.
var (
	// CommonBrokers contains the accepted broker values
	CommonBrokers = []string{"UBS", "SCHWAB", "JMS", "JANNEY", "WELLS FARGO", "MAC"}
)

// RandomBroker returns a random broker from CommonBrokers.
func RandomBroker() string {
	//nolint:gosec // G404: Using math/rand for test data generation is acceptable
	return CommonBrokers[rand.Intn(len(CommonBrokers))]
}
