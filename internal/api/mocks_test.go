package api_test

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/crawl"
	"github.com/persistorai/degrees/internal/provider"
	"github.com/persistorai/degrees/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.ErrorLevel)

	return l
}

// failingRunner accepts every request and fails every crawl with err.
type failingRunner struct {
	err error
}

func (f *failingRunner) Validate(*service.CrawlRequest) error { return nil }

func (f *failingRunner) Crawl(context.Context, service.CrawlRequest, ...crawl.Observer) (*service.Run, error) {
	return nil, f.err
}

// fixtureService runs real crawls over a small static fixture:
// Alice knows Bob and Carol, Bob knows Dan.
func fixtureService() *service.CrawlService {
	p := provider.NewStaticProvider(provider.Fixture{Entities: map[string]provider.FixtureEntity{
		"UC1": {Name: "Alice", Neighbors: []string{"UC2", "UC3"}},
		"UC2": {Name: "Bob", Neighbors: []string{"UC1", "UC4"}},
		"UC3": {Name: "Carol", Neighbors: []string{"UC1"}},
		"UC4": {Name: "Dan", Neighbors: []string{"UC2"}},
	}})

	return service.NewCrawlService(p, testLogger(), 3)
}
