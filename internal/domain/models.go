package domain

// Trade is a single buy/sell execution extracted from a trade note.
// Validation tags are enforced by the validator engine before a Trade is
// allowed into a ConversionResult.
type Trade struct {
	OrderNumber    string        `json:"orderNumber" validate:"required"`
	TradeDate      string        `json:"tradeDate" validate:"required,datetime=2006-01-02"`
	OperationType  OperationType `json:"operationType" validate:"required,oneof=Buy Sell"`
	MarketType     string        `json:"marketType" validate:"required"`
	Market         Market        `json:"market" validate:"required,oneof=Equities Derivatives"`
	Ticker         string        `json:"ticker" validate:"required"`
	Quantity       int64         `json:"quantity" validate:"required,gt=0"`
	Price          float64       `json:"price" validate:"required,gt=0"`
	TotalValue     float64       `json:"totalValue" validate:"required,gt=0"`
	StrikePrice    *float64      `json:"strikePrice,omitempty"`
	ExpirationDate *string       `json:"expirationDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Fee is the total cost charged for one trade note.
type Fee struct {
	OrderNumber string  `json:"orderNumber" validate:"required"`
	TotalFees   float64 `json:"totalFees" validate:"gte=0"`
}

// RecordSet is the structured output of the extraction agent.
type RecordSet struct {
	Trades []Trade `json:"trades" validate:"dive"`
	Fees   []Fee   `json:"fees" validate:"dive"`
}

// BoundingBox is a table's position on its page, in engine coordinates.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// TableElement is one detected table as a normalized grid of cell strings.
// Rows and Cols always equal the grid's actual dimensions.
type TableElement struct {
	ID         int          `json:"id"`
	Page       int          `json:"page"`
	BBox       *BoundingBox `json:"bbox,omitempty"`
	Confidence float64      `json:"confidence"`
	Rows       int          `json:"rows"`
	Cols       int          `json:"cols"`
	Grid       [][]string   `json:"grid"`
}

// TableExport is one table serialized into a requested encoding.
// Content holds the encoded bytes; for xlsx it is the raw workbook.
type TableExport struct {
	TableID  int          `json:"table_id"`
	Format   ExportFormat `json:"format"`
	Filename string       `json:"filename"`
	Content  []byte       `json:"content"`
}

// FileInfo describes the converted input document.
type FileInfo struct {
	Size        int64  `json:"size"`
	Fingerprint string `json:"fingerprint"`
	PageCount   int    `json:"page_count,omitempty"`
	RecordCount int    `json:"record_count,omitempty"`
	Model       string `json:"model,omitempty"`
}

// ConversionResult is the normalized envelope returned for every
// conversion, regardless of which processor produced it.
type ConversionResult struct {
	Processor Processor      `json:"processor"`
	Format    ExportFormat   `json:"format,omitempty"`
	Pages     map[int]string `json:"pages,omitempty"`
	Trades    []Trade        `json:"trades,omitempty"`
	Fees      []Fee          `json:"fees,omitempty"`
	Tables    []TableElement `json:"tables,omitempty"`
	Exports   []TableExport  `json:"exports,omitempty"`
	FileInfo  FileInfo       `json:"file_info"`
}
