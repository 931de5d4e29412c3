package discovery

import (
	"context"
	"strings"
	"testing"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	fakeclientset "k8s.io/client-go/kubernetes/fake"

	"github.com/kubeadapt/spotinst-autoscaler/internal/errors"
)

func metricsDiscovery() []*metav1.APIResourceList {
	return []*metav1.APIResourceList{
		{GroupVersion: "v1", APIResources: []metav1.APIResource{{Name: "nodes"}, {Name: "pods"}}},
		{GroupVersion: "metrics.k8s.io/v1beta1", APIResources: []metav1.APIResource{{Name: "nodes"}, {Name: "pods"}}},
	}
}

func TestPreflight_Passes(t *testing.T) {
	node := &v1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
		Spec:       v1.NodeSpec{ProviderID: "aws:///us-east-1a/i-abc123"},
	}
	client := fakeclientset.NewSimpleClientset(node)
	seen := addAccessReviewReactor(client, allowAll)

	caps, err := Preflight(context.Background(), client, newFakeDiscovery(metricsDiscovery()))
	if err != nil {
		t.Fatalf("Preflight() error = %v", err)
	}
	if !caps.MetricsServer {
		t.Error("expected MetricsServer=true")
	}
	if caps.Provider != "aws" {
		t.Errorf("Provider = %q, want %q", caps.Provider, "aws")
	}

	want := []string{"list /nodes", "list /pods", "list metrics.k8s.io/nodes"}
	if strings.Join(*seen, ",") != strings.Join(want, ",") {
		t.Errorf("reviews = %v, want %v", *seen, want)
	}
}

func TestPreflight_NoMetricsAPI(t *testing.T) {
	client := fakeclientset.NewSimpleClientset()
	addAccessReviewReactor(client, allowAll)

	disco := newFakeDiscovery([]*metav1.APIResourceList{{GroupVersion: "apps/v1"}})

	_, err := Preflight(context.Background(), client, disco)
	if err == nil {
		t.Fatal("expected error when metrics.k8s.io is not served")
	}
	if code := errors.CodeOf(err); code != errors.ErrPreflightFailed {
		t.Errorf("code = %q, want %q", code, errors.ErrPreflightFailed)
	}
	if !strings.Contains(err.Error(), "metrics-server") {
		t.Errorf("error should mention metrics-server, got %v", err)
	}
}

func TestPreflight_MetricsGroupWithoutNodes(t *testing.T) {
	client := fakeclientset.NewSimpleClientset()
	addAccessReviewReactor(client, allowAll)

	disco := newFakeDiscovery([]*metav1.APIResourceList{
		{GroupVersion: "metrics.k8s.io/v1beta1", APIResources: []metav1.APIResource{{Name: "pods"}}},
	})

	if _, err := Preflight(context.Background(), client, disco); errors.CodeOf(err) != errors.ErrPreflightFailed {
		t.Fatalf("expected PREFLIGHT_FAILED, got %v", err)
	}
}

func TestPreflight_RBACDeniedListsEveryMissingPermission(t *testing.T) {
	client := fakeclientset.NewSimpleClientset()
	addAccessReviewReactor(client, func(group, resource string) bool {
		return group == "" && resource == "nodes"
	})

	_, err := Preflight(context.Background(), client, newFakeDiscovery(metricsDiscovery()))
	if err == nil {
		t.Fatal("expected error when RBAC denies access")
	}
	if code := errors.CodeOf(err); code != errors.ErrPreflightFailed {
		t.Errorf("code = %q, want %q", code, errors.ErrPreflightFailed)
	}
	msg := err.Error()
	if !strings.Contains(msg, "pods") || !strings.Contains(msg, "nodes.metrics.k8s.io") {
		t.Errorf("error should name pods and nodes.metrics.k8s.io, got %q", msg)
	}
}

func TestPreflight_UnknownProviderIsNotFatal(t *testing.T) {
	client := fakeclientset.NewSimpleClientset(&v1.Node{ObjectMeta: metav1.ObjectMeta{Name: "kind-control-plane"}})
	addAccessReviewReactor(client, allowAll)

	caps, err := Preflight(context.Background(), client, newFakeDiscovery(metricsDiscovery()))
	if err != nil {
		t.Fatalf("Preflight() error = %v", err)
	}
	if caps.Provider != "unknown" {
		t.Errorf("Provider = %q, want %q", caps.Provider, "unknown")
	}
}
