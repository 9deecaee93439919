package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/fanbacker/internal/config"
	"github.com/fanbacker/internal/errors"
	"github.com/fanbacker/internal/logging"
	"github.com/fanbacker/internal/models"
	"github.com/fanbacker/internal/storage"
	"github.com/fanbacker/internal/types"
)

func integrationPostgres(t *testing.T) *storage.PostgresDB {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := &config.PostgresConfig{
		Host:           "localhost",
		Port:           "5432",
		Database:       "fanbacker",
		User:           "fanbacker",
		Password:       "fanbacker_dev_password",
		MaxConnections: 10,
	}

	db, err := storage.NewPostgresDB(cfg)
	if err != nil {
		t.Skipf("Skipping test - Postgres not available: %v", err)
	}
	t.Cleanup(db.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var campaignsTable *string
	if err := db.Pool().QueryRow(ctx, "SELECT to_regclass('public.campaigns')::text").Scan(&campaignsTable); err != nil || campaignsTable == nil {
		t.Skip("Skipping test - schema not migrated")
	}
	return db
}

func integrationCache(t *testing.T) *storage.CacheService {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redis, err := storage.NewRedisCache(&config.RedisConfig{
		Host:           mr.Host(),
		Port:           mr.Port(),
		MaxConnections: 5,
	})
	if err != nil {
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}
	t.Cleanup(func() { _ = redis.Close() })

	return storage.NewCacheService(redis, time.Minute)
}

func createTestUser(t *testing.T, ctx context.Context, users *storage.UserRepository, role types.UserRole) *models.User {
	t.Helper()
	u := &models.User{
		Name:  fmt.Sprintf("test-%s", uuid.New().String()[:8]),
		Email: fmt.Sprintf("%s@test.invalid", uuid.New().String()),
		Role:  role,
	}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return u
}

// A wallet operation for a user id that does not exist must read as a
// missing user, not as a database failure.
func TestDepositUnknownUserNotFound(t *testing.T) {
	db := integrationPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	policy := config.PolicyConfig{
		MinDeposit: types.MoneyFromRupees(100),
		MaxDeposit: types.MoneyFromRupees(100000),
	}
	logger := logging.NewLogger(logging.LevelError, logging.FormatText)
	svc := NewWalletService(db, storage.NewWalletRepository(db), nil, policy, logger)

	_, _, err := svc.Deposit(ctx, uuid.New().String(), types.MoneyFromRupees(500))
	assertErrorCode(t, err, "NOT_FOUND")
}

// Concurrent purchases race for the last partitions of a live campaign.
// With inventory for all but one buyer, the campaign row lock must let
// exactly one lose, and the total sold must match the inventory.
func TestExecuteConcurrentPurchasesNeverOversell(t *testing.T) {
	db := integrationPostgres(t)
	cache := integrationCache(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	users := storage.NewUserRepository(db)
	campaignRepo := storage.NewCampaignRepository(db)
	holdings := storage.NewHoldingRepository(db)
	wallets := storage.NewWalletRepository(db)
	logger := logging.NewLogger(logging.LevelError, logging.FormatText)
	svc := NewInvestmentService(db, campaignRepo, holdings, wallets, cache, nil, logger)

	const buyers = 4
	const partitionsEach = int64(3)
	inventory := int64(buyers-1) * partitionsEach

	artist := createTestUser(t, ctx, users, types.RoleArtist)
	investors := make([]*models.User, buyers)
	for i := range investors {
		investors[i] = createTestUser(t, ctx, users, types.RoleInvestor)
	}

	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(24 * time.Hour)
	campaign := &models.Campaign{
		ArtistID:             artist.ID,
		Title:                "Oversell Race",
		Genre:                types.GenrePop,
		TargetAmount:         types.MoneyFromRupees(100000),
		PartitionPrice:       types.MoneyFromRupees(1000),
		RevenueSharePct:      40,
		TotalPartitions:      inventory,
		MinPartitionsPerUser: 1,
		FundingStatus:        types.FundingLive,
		ArtistFollowers:      40000,
		ViralFactor:          types.ViralMedium,
		DurationMonths:       3,
		StartDate:            &start,
		EndDate:              &end,
	}
	if err := campaignRepo.Create(ctx, campaign); err != nil {
		t.Fatalf("Failed to create test campaign: %v", err)
	}

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		_, _ = db.Pool().Exec(cleanupCtx, "DELETE FROM holdings WHERE campaign_id = $1", campaign.ID)
		_, _ = db.Pool().Exec(cleanupCtx, "DELETE FROM campaigns WHERE id = $1", campaign.ID)
		ids := []string{artist.ID}
		for _, inv := range investors {
			ids = append(ids, inv.ID)
		}
		_, _ = db.Pool().Exec(cleanupCtx, "DELETE FROM users WHERE id = ANY($1)", ids)
	})

	// All buyers fire at once. External funding keeps wallets out of the
	// race so only the inventory guard decides.
	results := make([]error, buyers)
	release := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-release
			_, err := svc.Execute(ctx, investors[i].ID, InvestmentRequest{
				CampaignID:    campaign.ID,
				Partitions:    partitionsEach,
				FundingSource: types.SourceExternal,
			})
			results[i] = err
		}(i)
	}
	close(release)
	wg.Wait()

	var succeeded, soldOut int
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Categorize(err).Code == "INSUFFICIENT_INVENTORY":
			soldOut++
		default:
			t.Errorf("Unexpected purchase error: %v", err)
		}
	}
	if succeeded != buyers-1 {
		t.Errorf("Expected %d successful purchases, got %d", buyers-1, succeeded)
	}
	if soldOut != 1 {
		t.Errorf("Expected exactly one INSUFFICIENT_INVENTORY rejection, got %d", soldOut)
	}

	settled, err := campaignRepo.GetByID(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Failed to reload campaign: %v", err)
	}
	if settled.PartitionsSold != inventory {
		t.Errorf("Expected %d partitions sold, got %d", inventory, settled.PartitionsSold)
	}
}
