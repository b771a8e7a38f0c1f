// Completion: 100% - Node pool dump complete
package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// PoolEntry is one node of the pool as shown by the dump
type PoolEntry struct {
	Index     int    `yaml:"index"`
	Kind      string `yaml:"kind"`
	Left      *int   `yaml:"left,omitempty"`
	Right     *int   `yaml:"right,omitempty"`
	Value     *int64 `yaml:"value,omitempty"`
	Name      string `yaml:"name,omitempty"`
	Hits      int    `yaml:"hits"`
	Shares    int    `yaml:"shares"`
	Reachable bool   `yaml:"reachable"`
	Root      bool   `yaml:"root,omitempty"`
}

// PoolEntries describes every node in insertion order, orphans included
func PoolEntries(p *NodePool, root NodeRef) []PoolEntry {
	reachable := make(map[NodeRef]bool)
	for _, ref := range p.Reachable(root) {
		reachable[ref] = true
	}

	entries := make([]PoolEntry, 0, p.Len())
	for i, n := range p.Nodes() {
		ref := NodeRef(i)
		e := PoolEntry{
			Index:     i,
			Kind:      n.Kind.String(),
			Hits:      n.Hits,
			Shares:    n.Shares,
			Reachable: reachable[ref],
			Root:      ref == root,
		}
		switch n.Kind {
		case KindInt:
			v := n.Value
			e.Value = &v
		case KindName:
			e.Name = string(rune(n.Value))
		default:
			l, r := int(n.Left), int(n.Right)
			e.Left, e.Right = &l, &r
		}
		entries = append(entries, e)
	}
	return entries
}

// WritePool dumps the pool to w as a table or as YAML
func WritePool(w io.Writer, format string, p *NodePool, root NodeRef) error {
	entries := PoolEntries(p, root)
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"nodes": entries, "capacity": p.Limit()}); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		writePoolTable(w, p, entries)
		return nil
	default:
		return fmt.Errorf("unknown pool format %q", format)
	}
}

func writePoolTable(w io.Writer, p *NodePool, entries []PoolEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Node pool")
	t.AppendHeader(table.Row{"#", "Node", "Hits", "Shares", "Reachable"})
	orphans := 0
	for _, e := range entries {
		node := p.describe(NodeRef(e.Index))
		if e.Root {
			node += " (root)"
		}
		reach := "yes"
		if !e.Reachable {
			reach = "no"
			orphans++
		}
		t.AppendRow(table.Row{e.Index, node, e.Hits, e.Shares, reach})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d nodes", len(entries), p.Limit()), "", "", fmt.Sprintf("%d orphaned", orphans)})
	t.Render()
}
