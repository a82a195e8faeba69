package agno

// BuildExtractionPrompt returns the trade extraction prompt for the given
// retry attempt. Attempt zero carries the full field-by-field schema;
// later attempts progressively shorten the instructions, which helps when
// the model keeps wrapping its answer in prose or truncating the output.
func BuildExtractionPrompt(attempt int) string {
	switch {
	case attempt <= 0:
		return fullPrompt
	case attempt == 1:
		return compactPrompt
	default:
		return minimalPrompt
	}
}

const fullPrompt = `You are a financial document extraction assistant. The provided document is a Brazilian brokerage trade confirmation (nota de negociação). Extract ALL trades and the fee summary into the following JSON structure.

IMPORTANT INSTRUCTIONS:
- The document may span multiple pages. Extract EVERY trade row from every page into a single flat "trades" array. Do not skip, summarize, or omit any rows.
- Normalize all dates to YYYY-MM-DD format.
- "operationType" must be exactly "Buy" or "Sell".
- "market" must be exactly "Equities" or "Derivatives".
- Numeric fields use plain numbers with a dot decimal separator, no thousands separators and no currency symbols.
- Option rows carry "strikePrice" and "expirationDate"; omit both for plain equity trades.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation.

The JSON object must follow this schema:
{
  "trades": [
    {
      "orderNumber": "",
      "tradeDate": "",
      "operationType": "",
      "marketType": "",
      "market": "",
      "ticker": "",
      "quantity": 0,
      "price": 0,
      "totalValue": 0,
      "strikePrice": 0,
      "expirationDate": ""
    }
  ],
  "fees": [
    {
      "orderNumber": "",
      "totalFees": 0
    }
  ]
}
"totalFees" is the summed cost (settlement, registration, emoluments, brokerage, taxes) charged for the order.`

const compactPrompt = `Extract every trade and the fee summary from this Brazilian brokerage confirmation as JSON with two keys: "trades" (array of {orderNumber, tradeDate, operationType, marketType, market, ticker, quantity, price, totalValue}) and "fees" (array of {orderNumber, totalFees}). operationType is "Buy" or "Sell"; market is "Equities" or "Derivatives"; dates are YYYY-MM-DD. Return only the JSON object.`

const minimalPrompt = `Return a JSON object with "trades" and "fees" arrays extracted from this trade confirmation document. JSON only.`
