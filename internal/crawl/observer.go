package crawl

import (
	"github.com/sirupsen/logrus"

	"github.com/persistorai/degrees/internal/models"
)

// Observer receives crawl progress. Calls happen synchronously on the crawl
// goroutine in discovery order.
type Observer interface {
	Level(degree, queued int)
	Node(id string, degree int)
	Edge(source, target string)
	Warning(w models.Warning)
	Processed(degree, count int)
}

// NopObserver ignores every event. Embed it to implement a subset.
type NopObserver struct{}

// Level implements Observer.
func (NopObserver) Level(int, int) {}

// Node implements Observer.
func (NopObserver) Node(string, int) {}

// Edge implements Observer.
func (NopObserver) Edge(string, string) {}

// Warning implements Observer.
func (NopObserver) Warning(models.Warning) {}

// Processed implements Observer.
func (NopObserver) Processed(int, int) {}

type multiObserver []Observer

func (m multiObserver) Level(degree, queued int) {
	for _, o := range m {
		o.Level(degree, queued)
	}
}

func (m multiObserver) Node(id string, degree int) {
	for _, o := range m {
		o.Node(id, degree)
	}
}

func (m multiObserver) Edge(source, target string) {
	for _, o := range m {
		o.Edge(source, target)
	}
}

func (m multiObserver) Warning(w models.Warning) {
	for _, o := range m {
		o.Warning(w)
	}
}

func (m multiObserver) Processed(degree, count int) {
	for _, o := range m {
		o.Processed(degree, count)
	}
}

// LogObserver reports progress through logrus: warnings at warn level,
// level starts and processed counts at info, new nodes and edges at debug.
type LogObserver struct {
	Log *logrus.Entry
}

// NewLogObserver returns a LogObserver tagged with the crawl run id.
func NewLogObserver(log *logrus.Logger, runID string) *LogObserver {
	return &LogObserver{Log: log.WithField("run_id", runID)}
}

// Level logs the start of a degree and its queue size.
func (o *LogObserver) Level(degree, queued int) {
	o.Log.WithFields(logrus.Fields{"degree": degree, "queued": queued}).Info("expanding degree")
}

// Node logs a newly discovered node.
func (o *LogObserver) Node(id string, degree int) {
	o.Log.WithFields(logrus.Fields{"node": id, "degree": degree}).Debug("new node")
}

// Edge logs a newly added edge.
func (o *LogObserver) Edge(source, target string) {
	o.Log.WithFields(logrus.Fields{"source": source, "target": target}).Debug("new edge")
}

// Warning logs a failed lookup.
func (o *LogObserver) Warning(w models.Warning) {
	o.Log.WithFields(logrus.Fields{"degree": w.Degree, "ref": w.Ref}).Warn(w.Message)
}

// Processed logs how many entities a degree expanded.
func (o *LogObserver) Processed(degree, count int) {
	o.Log.WithFields(logrus.Fields{"degree": degree, "processed": count}).Info("processed entities")
}
