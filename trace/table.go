package trace

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
)

const registersPerRow = 8

// RenderState renders the final registers and memory as tables.
func RenderState(s FinalState) string {
	regTable := table.NewWriter()
	regTable.SetTitle(fmt.Sprintf("Registers after %d cycles", s.Cycles))

	header := table.Row{"Row"}
	for i := 0; i < registersPerRow; i++ {
		header = append(header, fmt.Sprintf("+%d", i))
	}
	regTable.AppendHeader(header)

	for start := 0; start < len(s.Registers); start += registersPerRow {
		row := table.Row{s.Registers[start].Name}
		for i := start; i < start+registersPerRow && i < len(s.Registers); i++ {
			row = append(row, s.Registers[i].Value)
		}
		regTable.AppendRow(row)
	}

	memTable := table.NewWriter()
	memTable.SetTitle("Memory")
	memTable.AppendHeader(table.Row{"Address", "Value"})
	for _, m := range s.Memory {
		memTable.AppendRow(table.Row{m.Addr, m.Value})
	}

	return regTable.Render() + "\n\n" + memTable.Render()
}

// RenderDiagram renders the classic pipeline diagram: one row per execution,
// one column per cycle, each cell naming the stage or "stall". Squashed
// executions show "noop" while they occupy a stage.
func RenderDiagram(records []Record) string {
	var order []uint64
	rows := map[uint64]table.Row{}

	cell := func(id uint64, col int, text string) {
		row, ok := rows[id]
		if !ok {
			row = table.Row{fmt.Sprintf("I%d", id)}
			order = append(order, id)
		}
		for len(row) <= col {
			row = append(row, "")
		}
		row[col] = text
		rows[id] = row
	}

	header := table.Row{"Inst"}
	for col, r := range records {
		header = append(header, r.Cycle)
		for _, e := range r.Entries {
			cell(e.ExecID, col+1, e.Label())
		}
		for _, b := range r.Bubbles {
			cell(b.ExecID, col+1, "noop")
		}
	}

	t := table.NewWriter()
	t.SetTitle("Pipeline diagram")
	t.AppendHeader(header)
	for _, id := range order {
		t.AppendRow(rows[id])
	}

	return t.Render()
}
