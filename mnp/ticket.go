package mnp

import (
	"fmt"

	"salesperf/model"
)

// Ticket は同一売上伝票番号の明細です。Rows は元の配列の添字をファイル順に持ちます。
type Ticket struct {
	Key  string
	Rows []int
}

// unknownTicketKey は伝票番号の無い行に割り当てる単独グループのキーです。
func unknownTicketKey(tx model.SalesTransaction, idx int) string {
	if tx.Line > 0 {
		return fmt.Sprintf("UNKNOWN_%d", tx.Line)
	}
	return fmt.Sprintf("UNKNOWN_#%d", idx)
}

// GroupByTicket は明細を伝票番号ごとにまとめます。伝票の並びは最初に現れた順です。
func GroupByTicket(txs []model.SalesTransaction) []Ticket {
	var tickets []Ticket
	pos := make(map[string]int)

	for i, tx := range txs {
		key, mapKey := tx.TicketNumber, "t:"+tx.TicketNumber
		if key == "" {
			key = unknownTicketKey(tx, i)
			mapKey = "u:" + key
		}
		p, ok := pos[mapKey]
		if !ok {
			p = len(tickets)
			pos[mapKey] = p
			tickets = append(tickets, Ticket{Key: key})
		}
		tickets[p].Rows = append(tickets[p].Rows, i)
	}
	return tickets
}
