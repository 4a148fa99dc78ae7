// Package ofx reads OFX/QFX bank and credit card statements and books their
// transactions onto an account.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

// Draft is one statement transaction before it is booked.
type Draft struct {
	Date             time.Time
	Amount           decimal.Decimal
	FITID            string
	Description      string
	StatementAccount string
	Kind             string
	CheckNumber      string
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// Banks emit mixed-case SEVERITY values; ofxgo only accepts upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare opening tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func (p *Parser) parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns its transactions in file order.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Draft, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	var drafts []Draft
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			txns, err := p.convertList(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))
			if err != nil {
				return nil, err
			}
			drafts = append(drafts, txns...)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			txns, err := p.convertList(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))
			if err != nil {
				return nil, err
			}
			drafts = append(drafts, txns...)
		}
	}

	slog.Info("Parsed OFX file",
		"total_transactions", len(drafts),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return drafts, nil
}

func (p *Parser) convertList(list *ofxgo.TransactionList, account string) ([]Draft, error) {
	if list == nil {
		return nil, nil
	}
	drafts := make([]Draft, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		draft, err := p.convertTransaction(ofxTx, account)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

// convertTransaction keeps the statement's sign: OFX uses negative amounts
// for money leaving the account, which is also the ledger's convention.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, account string) (Draft, error) {
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.Rat.FloatString(model.MoneyScale + 2))
	if err != nil {
		return Draft{}, fmt.Errorf("transaction %s: bad amount: %w", ofxTx.FiTID, err)
	}
	amount = amount.Round(model.MoneyScale)

	posted := ofxTx.DtPosted.Time
	return Draft{
		FITID:            string(ofxTx.FiTID),
		Date:             time.Date(posted.Year(), posted.Month(), posted.Day(), 0, 0, 0, 0, time.UTC),
		Amount:           amount,
		Description:      truncate(p.extractDescription(ofxTx), 240),
		StatementAccount: account,
		Kind:             ofxTx.TrnType.String(),
		CheckNumber:      string(ofxTx.CheckNum),
	}, nil
}

// extractDescription tries to get a clean merchant name from OFX data.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " dates.
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}
	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// StatementAccounts lists the distinct bank and card account numbers in
// the file.
func (p *Parser) StatementAccounts(ctx context.Context, reader io.Reader) ([]string, error) {
	resp, err := p.parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[string(stmt.BankAcctFrom.AcctID)] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[string(stmt.CCAcctFrom.AcctID)] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
