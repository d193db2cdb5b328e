// Package testing drives weft components through real render cycles for
// tests.
//
// # Quick Start
//
// Create a tester for a root spec, pump a frame, and make assertions:
//
//	func TestCounter(t *testing.T) {
//	    tester := wefttest.NewTesterWithT(t, core.Comp(Counter))
//
//	    tester.Tap(wefttest.ByUserID("increment"))
//	    tester.Pump()
//
//	    if !tester.Find(wefttest.ByText("1")).Exists() {
//	        t.Error("expected count 1")
//	    }
//	}
//
// # Snapshot Testing
//
// Capture the shadow tree, element tree, and draw operations and compare
// them with a golden file:
//
//	tester.CaptureSnapshot().MatchesFile(t, "testdata/counter.snapshot.json")
//
// Update snapshots with:
//
//	WEFT_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import wefttest "github.com/go-drift/weft/pkg/testing"
package testing
