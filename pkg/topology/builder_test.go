package topology

import (
	"reflect"
	"testing"
)

func TestBuild_ChainRoundRobin(t *testing.T) {
	topo, err := Build(Params{
		Depth:            4,
		ServicesPerLevel: []int{1, 1, 1, 1},
		Replicas:         2,
		Nodes:            []string{"n1", "n2"},
		Strategy:         StrategyRoundRobin,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	wantOrder := []string{"frontend", "service-d1-1", "service-d2-1", "service-d3-1"}
	if got := topo.Names(); !reflect.DeepEqual(got, wantOrder) {
		t.Fatalf("unexpected service order:\n got=%v\nwant=%v", got, wantOrder)
	}

	wantNodes := map[string]string{
		"frontend":     "n1",
		"service-d1-1": "n2",
		"service-d2-1": "n1",
		"service-d3-1": "n2",
	}
	wantOut := map[string][]string{
		"frontend":     {"service-d1-1"},
		"service-d1-1": {"service-d2-1"},
		"service-d2-1": {"service-d3-1"},
		"service-d3-1": {},
	}
	for name, node := range wantNodes {
		svc, ok := topo.Service(name)
		if !ok {
			t.Fatalf("missing service %q", name)
		}
		if svc.Node != node {
			t.Errorf("%s: node=%q, want %q", name, svc.Node, node)
		}
		if !reflect.DeepEqual(svc.OutServices, wantOut[name]) {
			t.Errorf("%s: out_services=%v, want %v", name, svc.OutServices, wantOut[name])
		}
		if svc.Replicas != 2 {
			t.Errorf("%s: replicas=%d, want 2", name, svc.Replicas)
		}
		if svc.Port != 50051 {
			t.Errorf("%s: port=%d, want 50051", name, svc.Port)
		}
		if svc.ProcessingDelay != "0ms" {
			t.Errorf("%s: processing_delay=%q, want 0ms", name, svc.ProcessingDelay)
		}
	}
}

func TestBuild_FanSameNode(t *testing.T) {
	topo, err := Build(Params{
		Depth:            2,
		ServicesPerLevel: []int{1, 2},
		Replicas:         1,
		Nodes:            []string{"x"},
		Strategy:         StrategySame,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	fe, _ := topo.Service("frontend")
	if want := []string{"service-d1-1", "service-d1-2"}; !reflect.DeepEqual(fe.OutServices, want) {
		t.Fatalf("frontend out_services=%v, want %v", fe.OutServices, want)
	}
	for _, name := range []string{"service-d1-1", "service-d1-2"} {
		svc, ok := topo.Service(name)
		if !ok {
			t.Fatalf("missing service %q", name)
		}
		if svc.Node != "x" {
			t.Errorf("%s: node=%q, want x", name, svc.Node)
		}
		if len(svc.OutServices) != 0 {
			t.Errorf("%s: out_services=%v, want empty", name, svc.OutServices)
		}
	}
}

func TestBuild_ServiceCount(t *testing.T) {
	counts := []int{1, 3, 5, 2, 4}
	topo, err := Build(Params{
		Depth:            5,
		ServicesPerLevel: counts,
		Replicas:         1,
		Nodes:            []string{"a"},
		Strategy:         StrategySame,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := 0
	for _, c := range counts {
		want += c
	}
	if topo.Len() != want {
		t.Fatalf("service count=%d, want %d", topo.Len(), want)
	}
}

func TestBuild_FullFanOutBetweenLevels(t *testing.T) {
	topo, err := Build(Params{
		Depth:            3,
		ServicesPerLevel: []int{1, 4, 3},
		Replicas:         1,
		Nodes:            []string{"a"},
		Strategy:         StrategySame,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	wantL2 := []string{"service-d2-1", "service-d2-2", "service-d2-3"}
	for i := 1; i <= 4; i++ {
		svc, _ := topo.Service(serviceName(1, i))
		if !reflect.DeepEqual(svc.OutServices, wantL2) {
			t.Errorf("%s: out_services=%v, want %v", svc.Name, svc.OutServices, wantL2)
		}
	}
	for i := 1; i <= 3; i++ {
		svc, _ := topo.Service(serviceName(2, i))
		if len(svc.OutServices) != 0 {
			t.Errorf("%s: final level should have no out_services, got %v", svc.Name, svc.OutServices)
		}
	}

	// Every referenced name must exist: no dangling edges by construction.
	for _, name := range topo.Names() {
		svc, _ := topo.Service(name)
		for _, out := range svc.OutServices {
			if _, ok := topo.Service(out); !ok {
				t.Errorf("%s references missing service %q", name, out)
			}
		}
	}
}

func TestBuild_HalfHalfPlacement(t *testing.T) {
	cases := []struct {
		depth     int
		wantFirst int // levels on nodes[0]
	}{
		{depth: 4, wantFirst: 2},
		{depth: 5, wantFirst: 3}, // strictly less than 2.5
		{depth: 6, wantFirst: 3},
	}
	for _, tc := range cases {
		counts := make([]int, tc.depth)
		for i := range counts {
			counts[i] = 1
		}
		topo, err := Build(Params{
			Depth:            tc.depth,
			ServicesPerLevel: counts,
			Replicas:         1,
			Nodes:            []string{"first", "middle", "last"},
			Strategy:         StrategyHalfHalf,
		})
		if err != nil {
			t.Fatalf("depth=%d: Build failed: %v", tc.depth, err)
		}
		for level, name := range topo.Names() {
			svc, _ := topo.Service(name)
			want := "last"
			if level < tc.wantFirst {
				want = "first"
			}
			if svc.Node != want {
				t.Errorf("depth=%d level=%d: node=%q, want %q", tc.depth, level, svc.Node, want)
			}
		}
	}
}

func TestBuild_UnknownStrategyFallsBackToSame(t *testing.T) {
	topo, err := Build(Params{
		Depth:            3,
		ServicesPerLevel: []int{1, 1, 1},
		Replicas:         1,
		Nodes:            []string{"a", "b"},
		Strategy:         Strategy("banana"),
	})
	if err != nil {
		t.Fatalf("unknown strategy must not be an error, got: %v", err)
	}
	for _, name := range topo.Names() {
		svc, _ := topo.Service(name)
		if svc.Node != "a" {
			t.Errorf("%s: node=%q, want all services on %q", name, svc.Node, "a")
		}
	}
}

func TestBuild_RejectsMultipleFrontends(t *testing.T) {
	_, err := Build(Params{
		Depth:            2,
		ServicesPerLevel: []int{2, 1},
		Replicas:         1,
		Nodes:            []string{"a"},
		Strategy:         StrategySame,
	})
	if err == nil {
		t.Fatal("expected error for level-0 count != 1")
	}
}

func TestBuild_RejectsEmptyNodePool(t *testing.T) {
	_, err := Build(Params{
		Depth:            1,
		ServicesPerLevel: []int{1},
		Replicas:         1,
		Strategy:         StrategySame,
	})
	if err == nil {
		t.Fatal("expected error for empty node pool")
	}
}

func TestBuild_TruncatesToShorterOfDepthAndCounts(t *testing.T) {
	// Depth larger than the counts vector: only the declared levels exist.
	topo, err := Build(Params{
		Depth:            6,
		ServicesPerLevel: []int{1, 2},
		Replicas:         1,
		Nodes:            []string{"a"},
		Strategy:         StrategySame,
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if topo.Len() != 3 {
		t.Fatalf("service count=%d, want 3", topo.Len())
	}
	for i := 1; i <= 2; i++ {
		svc, _ := topo.Service(serviceName(1, i))
		if len(svc.OutServices) != 0 {
			t.Errorf("%s: truncated final level should have no out_services, got %v", svc.Name, svc.OutServices)
		}
	}
}

func TestBuild_CustomPortAndDelay(t *testing.T) {
	topo, err := Build(Params{
		Depth:            1,
		ServicesPerLevel: []int{1},
		Replicas:         1,
		Nodes:            []string{"a"},
		Strategy:         StrategySame,
		Port:             9000,
		ProcessingDelay:  "5ms",
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	fe, _ := topo.Service("frontend")
	if fe.Port != 9000 || fe.ProcessingDelay != "5ms" {
		t.Fatalf("got port=%d delay=%q, want 9000/5ms", fe.Port, fe.ProcessingDelay)
	}
}
