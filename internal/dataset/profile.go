package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/KaramelBytes/mlstart-cli/internal/task"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ProfileOptions controls dataset profiling.
type ProfileOptions struct {
	// SampleRows is the number of leading rows shown; 0 uses 5.
	SampleRows int
	// Target, when set, adds a task inference section.
	Target string
	// MaxClasses is forwarded to task.Identify.
	MaxClasses int
}

// Profile is a markdown-friendly summary of a raw dataset.
type Profile struct {
	Name     string
	Rows     int
	Cols     []ColumnProfile
	Samples  [][]string
	Header   []string
	Target   string
	Task     task.Type
	Classes  int
	Warnings []string
}

// ColumnProfile captures inferred kind and statistics per column.
type ColumnProfile struct {
	Name    string
	Kind    Kind
	NonNull int
	Missing int
	Unique  int
	// numeric stats
	Min, Max, Mean, Std float64
	// categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// NewProfile summarizes a frame using the same column identification the
// pipeline uses.
func NewProfile(f *Frame, opt ProfileOptions) (*Profile, error) {
	numeric, _, err := IdentifyColumns(f)
	if err != nil {
		return nil, err
	}
	isNum := make(map[string]bool, len(numeric))
	for _, n := range numeric {
		isNum[n] = true
	}
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	p := &Profile{Name: f.Name, Rows: len(f.Records), Header: f.Header}
	for i := 0; i < len(f.Records) && i < sampleRows; i++ {
		p.Samples = append(p.Samples, f.Records[i])
	}

	for j, name := range f.Header {
		if strings.TrimSpace(name) == "" {
			p.Warnings = append(p.Warnings, fmt.Sprintf("column %d has no name and will be dropped", j+1))
			continue
		}
		cp := ColumnProfile{Name: name, Kind: Categorical}
		if isNum[name] {
			cp.Kind = Numeric
		}
		counts := map[string]int{}
		var nums []float64
		invalid := 0
		for _, rec := range f.Records {
			v := strings.TrimSpace(rec[j])
			if IsMissing(v) {
				cp.Missing++
				continue
			}
			cp.NonNull++
			counts[v]++
			if cp.Kind == Numeric {
				if x, ok := ParseFloat(v); ok {
					nums = append(nums, x)
				} else {
					invalid++
				}
			}
		}
		cp.Unique = len(counts)
		if len(nums) > 0 {
			cp.Min, cp.Max = floats.Min(nums), floats.Max(nums)
			if len(nums) > 1 {
				cp.Mean, cp.Std = stat.MeanStdDev(nums, nil)
			} else {
				cp.Mean = nums[0]
			}
		}
		if invalid > 0 {
			p.Warnings = append(p.Warnings, fmt.Sprintf("%s: %d non-numeric values will be treated as missing", name, invalid))
		}
		if cp.Kind == Categorical {
			cp.TopValues = topValues(counts, 8)
		}
		if cp.NonNull == 0 {
			p.Warnings = append(p.Warnings, fmt.Sprintf("%s: no values present", name))
		}
		p.Cols = append(p.Cols, cp)
	}

	if opt.Target != "" {
		vals, err := f.Values(opt.Target)
		if err != nil {
			return nil, err
		}
		p.Target = opt.Target
		p.Task = task.Identify(vals, opt.MaxClasses)
		distinct := map[string]struct{}{}
		for _, v := range vals {
			if v = strings.TrimSpace(v); v != "" {
				distinct[v] = struct{}{}
			}
		}
		p.Classes = len(distinct)
	}
	return p, nil
}

func topValues(counts map[string]int, limit int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > limit {
		tops = tops[:limit]
	}
	return tops
}

// Markdown renders the profile as a compact report.
func (p *Profile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(p.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%, unique %d)", c.Name, c.Kind, c.NonNull, missPct, c.Unique))
		switch c.Kind {
		case Numeric:
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(" - min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			}
		case Categorical:
			if len(c.TopValues) > 0 {
				b.WriteString(" - top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
			}
		}
		b.WriteString("\n")
	}

	if p.Target != "" {
		b.WriteString("\n[TARGET]\n")
		b.WriteString(fmt.Sprintf("Column: %s\n", p.Target))
		b.WriteString(fmt.Sprintf("Distinct values: %d\n", p.Classes))
		b.WriteString(fmt.Sprintf("Inferred task: %s\n", p.Task))
	}

	if len(p.Samples) > 0 {
		b.WriteString("\n[SAMPLE ROWS]\n")
		b.WriteString("| " + strings.Join(p.Header, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(p.Header)) + "\n")
		for _, row := range p.Samples {
			vals := make([]string, len(row))
			for i, v := range row {
				if len(v) > 40 {
					v = v[:37] + "..."
				}
				vals[i] = safeVal(v)
			}
			b.WriteString("| " + strings.Join(vals, " | ") + " |\n")
		}
	}
	if len(p.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range p.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
