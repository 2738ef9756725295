package cmd

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Arsynth/schnauzer/types"
)

var (
	colorTitle = color.New(color.Bold, color.FgHiWhite).SprintFunc()
	colorName  = color.New(color.FgWhite).SprintFunc()
	colorValue = color.New(color.FgGreen).SprintFunc()
	colorHead  = color.New(color.FgYellow).SprintFunc()
	colorIndex = color.New(color.FgRed).SprintFunc()
	colorDash  = color.New(color.Faint).SprintFunc()
)

// A record is one displayed item: its fields and any nested lists.
type record struct {
	Index  int // -1 when the record is not a list item
	Head   int // number of leading fields printed on the index line
	Fields []types.Field
	Groups []group
}

type group struct {
	Label string
	Items []*record
}

func newRecord(fields []types.Field) *record {
	return &record{Index: -1, Fields: fields}
}

func item(i int, head int, fields []types.Field) *record {
	return &record{Index: i, Head: head, Fields: fields}
}

func (r *record) add(label string, items ...*record) {
	r.Groups = append(r.Groups, group{Label: label, Items: items})
}

// only keeps the named fields, in the given order, when --short is set.
func only(fields []types.Field, names ...string) []types.Field {
	if !viper.GetBool("short") {
		return fields
	}
	var out []types.Field
	for _, n := range names {
		for _, f := range fields {
			if f.Name == n {
				out = append(out, f)
			}
		}
	}
	return out
}

type format struct {
	noIdx bool
}

func currentFormat() format {
	return format{noIdx: viper.GetBool("noidx")}
}

func (f format) text(w io.Writer, recs []*record, level int) {
	for _, r := range recs {
		f.textRecord(w, r, level)
	}
}

func (f format) textRecord(w io.Writer, r *record, level int) {
	indent := strings.Repeat(" ", level+1)
	fields := r.Fields
	if r.Index >= 0 {
		var parts []string
		if !f.noIdx {
			parts = append(parts, fmt.Sprintf("[%s]", colorIndex(r.Index)))
		}
		head := r.Head
		if head > len(fields) {
			head = len(fields)
		}
		for _, fld := range fields[:head] {
			parts = append(parts, fmt.Sprintf("%s: %s", colorName(fld.Name), colorHead(fld.Value)))
		}
		fmt.Fprintf(w, "%s%s\n", indent, strings.Join(parts, " "))
		fields = fields[head:]
		level++
		indent += " "
	}
	for _, fld := range fields {
		fmt.Fprintf(w, "%s|%s %s: %s\n", indent, colorDash("*"), colorName(fld.Name), colorValue(fld.Value))
	}
	for _, g := range r.Groups {
		if g.Label != "" {
			fmt.Fprintf(w, "%s|%s %s\n", indent, colorDash("*"), colorTitle(g.Label))
		}
		f.text(w, g.Items, level+1)
	}
}

func (f format) yamlNode(r *record) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	pair := func(k string, v *yaml.Node) {
		n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, v)
	}
	if r.Index >= 0 && !f.noIdx {
		pair("index", &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(r.Index)})
	}
	for _, fld := range r.Fields {
		pair(fld.Name, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: fld.Value})
	}
	for _, g := range r.Groups {
		pair(g.Label, f.yamlList(g.Items))
	}
	return n
}

func (f format) yamlList(recs []*record) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range recs {
		seq.Content = append(seq.Content, f.yamlNode(r))
	}
	return seq
}

func render(w io.Writer, recs []*record) error {
	f := currentFormat()
	if viper.GetBool("yaml") {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f.yamlList(recs)); err != nil {
			return errors.Wrap(err, "failed to encode YAML")
		}
		return enc.Close()
	}
	f.text(w, recs, 0)
	return nil
}

// forEachPath builds the output of every path concurrently and writes them
// to w in argument order.
func forEachPath(w io.Writer, paths []string, build func(path string) ([]*record, error)) error {
	outs := make([]bytes.Buffer, len(paths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			recs, err := build(path)
			if err != nil {
				return errors.Wrapf(err, "could not parse %s", path)
			}
			return render(&outs[i], recs)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i := range outs {
		if len(paths) > 1 {
			if viper.GetBool("yaml") {
				fmt.Fprintf(w, "--- # %s\n", paths[i])
			} else {
				fmt.Fprintf(w, "%s:\n", colorTitle(paths[i]))
			}
		}
		if _, err := outs[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
