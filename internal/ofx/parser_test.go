package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/mosaicfin/reconpilot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-1250.00
<FITID>2024011501
<NAME>ACH DEBIT APEX MATERIALS
<MEMO>INV-2024-051
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-890.25
<FITID>2024012001
<NAME>Northwind Logistics
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>Cobalt Freight Ltd
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>EUR
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>HELIOS ENERGY CO
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>BRIGHTLINE OFFICE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 3,
			expectedError: false,
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
			expectedError: false,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedCount: 0,
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedCount: 0,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			reader := strings.NewReader(tt.ofxData)

			transactions, err := parser.ParseFile(context.Background(), reader)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, transactions, tt.expectedCount)
			}
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	parser := NewParser()
	reader := strings.NewReader(sampleBankOFX)

	transactions, err := parser.ParseFile(context.Background(), reader)
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	tx1 := transactions[0]
	assert.Equal(t, "2024011501", tx1.ID)
	assert.Equal(t, "APEX MATERIALS", tx1.VendorName)
	assert.Equal(t, "INV-2024-051", tx1.InvoiceID)
	assert.Equal(t, 1250.00, tx1.Amount)
	assert.Equal(t, "USD", tx1.Currency)
	assert.Equal(t, model.StatusCleared, tx1.Status)
	assert.NotEmpty(t, tx1.Hash)
	// Compare just the date components, ignoring timezone
	assert.Equal(t, 2024, tx1.Date.Year())
	assert.Equal(t, time.January, tx1.Date.Month())
	assert.Equal(t, 15, tx1.Date.Day())

	tx2 := transactions[1]
	assert.Equal(t, "2024012001", tx2.ID)
	assert.Equal(t, "Northwind Logistics", tx2.VendorName)
	assert.Equal(t, "", tx2.InvoiceID)
	assert.Equal(t, 890.25, tx2.Amount)

	tx3 := transactions[2]
	assert.Equal(t, "2024012501", tx3.ID)
	assert.Equal(t, "Cobalt Freight Ltd", tx3.VendorName)
	assert.Equal(t, 500.00, tx3.Amount)
}

func TestParseCreditCardTransactions(t *testing.T) {
	parser := NewParser()
	reader := strings.NewReader(sampleCreditCardOFX)

	transactions, err := parser.ParseFile(context.Background(), reader)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	tx1 := transactions[0]
	assert.Equal(t, "CC2024011001", tx1.ID)
	assert.Equal(t, "HELIOS ENERGY CO", tx1.VendorName)
	assert.Equal(t, 45.99, tx1.Amount)
	assert.Equal(t, "EUR", tx1.Currency)
	assert.Equal(t, model.StatusCleared, tx1.Status)

	tx2 := transactions[1]
	assert.Equal(t, "CC2024011501", tx2.ID)
	assert.Equal(t, "BRIGHTLINE OFFICE", tx2.VendorName)
	assert.Equal(t, 15.00, tx2.Amount)
}

func TestExtractVendorName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "remove POS prefix",
			input:    "POS PURCHASE APEX MATERIALS",
			expected: "APEX MATERIALS",
		},
		{
			name:     "remove ACH DEBIT prefix",
			input:    "ACH DEBIT NORTHWIND LOGISTICS",
			expected: "NORTHWIND LOGISTICS",
		},
		{
			name:     "keep clean name",
			input:    "HELIOS ENERGY CO",
			expected: "HELIOS ENERGY CO",
		},
		{
			name:     "trim whitespace",
			input:    "  COBALT FREIGHT  ",
			expected: "COBALT FREIGHT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.input),
			}
			result := parser.extractVendorName(tx)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExtractInvoiceID(t *testing.T) {
	tests := []struct {
		name     string
		memo     string
		expected string
	}{
		{name: "dashed reference", memo: "PAYMENT INV-2024-051", expected: "INV-2024-051"},
		{name: "invoice keyword", memo: "INVOICE 8841 MAY", expected: "INV-8841"},
		{name: "invoice with hash", memo: "INVOICE #8841", expected: "INV-8841"},
		{name: "lowercase", memo: "inv-7001 settled", expected: "INV-7001"},
		{name: "no reference", memo: "MONTHLY SERVICE FEE", expected: ""},
		{name: "empty memo", memo: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractInvoiceID(tt.memo))
		})
	}
}

func TestTransactionDeduplication(t *testing.T) {
	tx1 := model.Transaction{
		ID:         "TX001",
		Date:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		VendorName: "Apex Materials",
		InvoiceID:  "INV-2024-051",
		Amount:     1250.00,
		Currency:   "USD",
		Status:     model.StatusCleared,
	}
	tx1.Hash = tx1.GenerateHash()

	// Same payment seen under a different bank ID hashes identically.
	tx2 := tx1
	tx2.ID = "TX002"
	tx2.Hash = tx2.GenerateHash()
	assert.Equal(t, tx1.Hash, tx2.Hash)

	tx3 := tx1
	tx3.Amount = 30.00
	tx3.Hash = tx3.GenerateHash()
	assert.NotEqual(t, tx1.Hash, tx3.Hash)

	tx4 := tx1
	tx4.Date = time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	tx4.Hash = tx4.GenerateHash()
	assert.NotEqual(t, tx1.Hash, tx4.Hash)
}
