package parsers

// salesCells は DefaultSalesColumns の幅で、指定した列だけ値を入れたセルを作ります。
func salesCells(values map[int]string) []string {
	cells := make([]string, DefaultSalesColumns.Width())
	for idx, v := range values {
		cells[idx] = v
	}
	return cells
}

func validSalesCells() map[int]string {
	c := DefaultSalesColumns
	return map[int]string{
		c.StoreCode:       "S100",
		c.StoreName:       "Tokyo Branch",
		c.SalesDate:       "2025/04/01",
		c.SalesTime:       "10:15:00",
		c.TicketNumber:    "T1",
		c.ProductCode:     "P-1",
		c.ProductName:     "iPhone 15",
		c.LargeCategory:   "移動機",
		c.SmallCategory:   "iPhone",
		c.Quantity:        "1",
		c.UnitPrice:       "120000",
		c.TotalPrice:      "120000",
		c.ProcedureName:   "MNP",
		c.StaffID:         "U1",
		c.StaffFamilyName: "山田",
		c.StaffGivenName:  "太郎",
		c.ContractType:    "au",
		c.GrossProfit:     "15000.50",
	}
}
