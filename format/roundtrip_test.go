package format

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/dhamidi/rfmt/r/parser"
)

var testcasesDir string
var testFilter string

func init() {
	flag.StringVar(&testcasesDir, "testcases", "", "directory containing .R test files")
	flag.StringVar(&testFilter, "filter", "", "filter test files by substring match on filename")
}

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

// TestRoundTrip_Testcases reprints every .R file under testcases/ and
// reparses the result. Files below testcases/invalid/ may contain syntax
// errors; all others must parse cleanly.
// Use -filter to select files by substring: go test ./format -filter=control
func TestRoundTrip_Testcases(t *testing.T) {
	dir := testcasesDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			t.Fatalf("failed to get working directory: %v", err)
		}
		for d := wd; d != filepath.Dir(d); d = filepath.Dir(d) {
			candidate := filepath.Join(d, "testcases")
			if info, err := os.Stat(candidate); err == nil && info.IsDir() {
				dir = candidate
				break
			}
		}
		if dir == "" {
			t.Skip("testcases directory not found; use -testcases flag to specify")
		}
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (strings.HasSuffix(d.Name(), ".R") || strings.HasSuffix(d.Name(), ".r")) {
			if testFilter != "" && !strings.Contains(path, testFilter) {
				return nil
			}
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk testcases directory: %v", err)
	}

	if len(files) == 0 {
		if testFilter != "" {
			t.Skipf("no .R files matching filter %q found in %s", testFilter, dir)
		}
		t.Skipf("no .R files found in %s", dir)
	}

	for _, file := range files {
		relPath, err := filepath.Rel(dir, file)
		if err != nil {
			relPath = filepath.Base(file)
		}
		testName := strings.ReplaceAll(relPath, string(filepath.Separator), "_")
		testName = strings.TrimSuffix(testName, filepath.Ext(testName))
		invalid := strings.HasPrefix(relPath, "invalid"+string(filepath.Separator))

		t.Run(testName, func(t *testing.T) {
			runRoundTripTest(t, file, invalid)
		})
	}
}

func runRoundTripTest(t *testing.T, filename string, invalid bool) {
	source, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}

	result, err := CheckRoundTrip(source, parser.WithFile(filename))
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}

	switch {
	case invalid && !result.HasErrors():
		t.Errorf("expected syntax errors in %s", filename)
	case !invalid && hasParseErrors(result.Program):
		t.Errorf("unexpected parse errors:\n%s", formatParseErrors(result.Program))
		for _, d := range result.Diagnostics {
			t.Logf("  %s", d)
		}
		return
	}

	var buf bytes.Buffer
	if err := NewMsgpackEncoder(&buf).Encode(result); err != nil {
		t.Fatalf("msgpack encode: %v", err)
	}
	doc, err := DecodeMsgpack(&buf)
	if err != nil {
		t.Fatalf("msgpack decode: %v", err)
	}
	if doc.Text() != string(source) {
		t.Fatalf("msgpack document does not reproduce the source")
	}

	reparsed := parser.Parse([]byte(doc.Text()), parser.WithFile(filename))
	diffs := compareNodeCounts(countNodeKinds(result.Program), countNodeKinds(reparsed.Program))
	if len(diffs) > 0 {
		t.Errorf("node count mismatch after msgpack round trip:\n\n%s", formatDiffs(diffs))
	}
}

// NodeCountDiff represents a difference in node counts between two trees
type NodeCountDiff struct {
	Kind     parser.NodeKind
	Original int
	Reparsed int
}

func countNodeKinds(node *parser.Node) map[parser.NodeKind]int {
	counts := make(map[parser.NodeKind]int)
	parser.Walk(node, func(n *parser.Node) bool {
		counts[n.Kind]++
		return true
	})
	return counts
}

func hasParseErrors(node *parser.Node) bool {
	return node.HasErrors()
}

func formatParseErrors(node *parser.Node) string {
	var errors []string
	for _, n := range node.Errors() {
		if n.Error != nil {
			errors = append(errors, fmt.Sprintf("  - %s at line %d, col %d",
				n.Error.Message, n.Span.Start.Line, n.Span.Start.Column))
		}
	}
	if len(errors) == 0 {
		return "  (error nodes found but no error details)"
	}
	return strings.Join(errors, "\n")
}

func compareNodeCounts(original, reparsed map[parser.NodeKind]int) []NodeCountDiff {
	var diffs []NodeCountDiff

	allKinds := make(map[parser.NodeKind]bool)
	for k := range original {
		allKinds[k] = true
	}
	for k := range reparsed {
		allKinds[k] = true
	}

	for kind := range allKinds {
		if original[kind] != reparsed[kind] {
			diffs = append(diffs, NodeCountDiff{Kind: kind, Original: original[kind], Reparsed: reparsed[kind]})
		}
	}

	// Most dropped nodes first
	sort.Slice(diffs, func(i, j int) bool {
		return diffs[i].Original-diffs[i].Reparsed > diffs[j].Original-diffs[j].Reparsed
	})
	return diffs
}

func formatDiffs(diffs []NodeCountDiff) string {
	var sb strings.Builder
	sb.WriteString("Kind                          Original  Reparsed  Delta\n")
	sb.WriteString("-----------------------------------------------------------\n")
	for _, d := range diffs {
		delta := d.Reparsed - d.Original
		sign := "+"
		if delta < 0 {
			sign = ""
		}
		sb.WriteString(fmt.Sprintf("%-30s %8d  %8d  %s%d\n", d.Kind.String(), d.Original, d.Reparsed, sign, delta))
	}
	return sb.String()
}
