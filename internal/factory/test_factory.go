package factory

import (
	"time"

	"github.com/jkoster/checkersgame-go/internal/dependencies/mocks"
	"github.com/jkoster/checkersgame-go/internal/game"
	"github.com/jkoster/checkersgame-go/internal/storage/memory"
	"github.com/jkoster/checkersgame-go/internal/testutil"
	"github.com/jkoster/checkersgame-go/internal/ws"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and an in-memory store
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	logger := testutil.NopLogger()

	app := newWithDependencies(game.DefaultConfig(), store, mockClock, mockRandom, logger)
	app.WSHandler = ws.NewHandler(app.Hub, "", logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
