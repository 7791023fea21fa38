// Package export renders a routing.HyperNetwork as GraphML, in the two
// forms named in spec §6: hyperedge form (one <hyperedge> per channel)
// and clique form (each channel expanded into its pairwise 2-section
// edges). Output is written directly to an io.Writer via
// encoding/xml-free string formatting, matching the teacher's preference
// for hand-built wire text (see channeldb's bolt key encoding) over a
// generic marshaler where the wire format is small and fixed.
package export

import (
	"fmt"
	"io"

	"github.com/breez/hyperlattice/hypergraph"
	"github.com/breez/hyperlattice/routing"
)

const graphMLHeader = `<?xml version="1.0" encoding="UTF-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns">
<graph id="G" edgedefault="undirected">
`

const graphMLFooter = `</graph>
</graphml>
`

// nodeIndex assigns each participant a stable 1-based index in
// registration order, the "n{1-based index}" id scheme spec §6
// requires.
func nodeIndex(n *routing.HyperNetwork) map[hypergraph.ParticipantID]int {
	idx := make(map[hypergraph.ParticipantID]int, len(n.Participants()))
	for i, p := range n.Participants() {
		idx[p] = i + 1
	}
	return idx
}

// WriteHyperedgeForm writes one <node> per participant and one
// <hyperedge> per channel, with one <endpoint> per member in member
// insertion order.
func WriteHyperedgeForm(w io.Writer, n *routing.HyperNetwork) error {
	idx := nodeIndex(n)

	if _, err := io.WriteString(w, graphMLHeader); err != nil {
		return err
	}

	for _, p := range n.Participants() {
		if _, err := fmt.Fprintf(w, "<node id=\"n%d\"/>\n", idx[p]); err != nil {
			return err
		}
	}

	for i, cid := range n.Channels() {
		ch, _ := n.Channel(cid)
		if _, err := fmt.Fprintf(w, "<hyperedge id=\"h%d\">\n", i+1); err != nil {
			return err
		}
		for _, m := range ch.Members() {
			if _, err := fmt.Fprintf(w, "<endpoint node=\"n%d\"/>\n", idx[m]); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</hyperedge>\n"); err != nil {
			return err
		}
	}

	_, err := io.WriteString(w, graphMLFooter)
	return err
}

// WriteCliqueForm writes one <node> per participant; each channel of
// size >= 2 is expanded into the ordered pairs (m_i, m_j), i < j, in
// member insertion order, each emitted as an <edge>.
func WriteCliqueForm(w io.Writer, n *routing.HyperNetwork) error {
	idx := nodeIndex(n)

	if _, err := io.WriteString(w, graphMLHeader); err != nil {
		return err
	}

	for _, p := range n.Participants() {
		if _, err := fmt.Fprintf(w, "<node id=\"n%d\"/>\n", idx[p]); err != nil {
			return err
		}
	}

	var edgeNum int
	for _, cid := range n.Channels() {
		ch, _ := n.Channel(cid)
		members := ch.Members()
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				edgeNum++
				_, err := fmt.Fprintf(w, "<edge id=\"e%d\" source=\"n%d\" target=\"n%d\"/>\n",
					edgeNum, idx[members[i]], idx[members[j]])
				if err != nil {
					return err
				}
			}
		}
	}

	_, err := io.WriteString(w, graphMLFooter)
	return err
}
