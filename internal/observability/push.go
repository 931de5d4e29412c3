package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job the autoscaler pushes under.
const JobName = "spotinst_autoscaler"

// Push sends every metric in m's registry to the Pushgateway at url,
// replacing the previous push for the same elastigroup. A nil client uses
// http.DefaultClient.
func Push(ctx context.Context, client push.HTTPDoer, url, elastigroupID string, m *Metrics) error {
	p := push.New(url, JobName).
		Gatherer(m.Registry).
		Grouping("elastigroup", elastigroupID)
	if client != nil {
		p = p.Client(client)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
