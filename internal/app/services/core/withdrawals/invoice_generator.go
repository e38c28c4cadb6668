package withdrawals

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/utils"
	"text/template"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const invoiceTemplate = `WITHDRAWAL INVOICE
==================

Invoice No:        {{.DisplayID}}
Withdrawal ID:     {{.WithdrawalID}}
Issued:            {{date .IssuedAt}}

Doctor:            {{.DoctorName}}
Email:             {{.DoctorEmail}}
Payout Account:    {{.PayoutAccount}}

Amount Requested:  INR {{money .Requested}}
Amount Paid:       INR {{money .Paid}}
Transaction ID:    {{.TransactionID}}
Payment Mode:      {{.PaymentMode}}
Date of Payment:   {{date .PaymentDate}}
`

type invoiceData struct {
	DisplayID     string
	WithdrawalID  string
	IssuedAt      time.Time
	DoctorName    string
	DoctorEmail   string
	PayoutAccount string
	Requested     float64
	Paid          float64
	TransactionID string
	PaymentMode   string
	PaymentDate   time.Time
}

type textInvoiceGenerator struct {
	Storage  contracts.Storage
	Log      *zap.Logger
	template *template.Template
}

func NewInvoiceGenerator(storage contracts.Storage, logger *zap.Logger) contracts.InvoiceGenerator {
	funcs := template.FuncMap{
		"money": func(amount float64) string { return strconv.FormatFloat(amount, 'f', 2, 64) },
		"date":  func(t time.Time) string { return t.Format("02 Jan 2006") },
	}
	return &textInvoiceGenerator{
		Storage:  storage,
		Log:      logger,
		template: template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceTemplate)),
	}
}

// Generate renders the invoice for an approved withdrawal and returns the
// stored object's URL.
func (g *textInvoiceGenerator) Generate(ctx context.Context, withdrawal *models.Withdrawal, doctor *models.Doctor) (string, error) {
	requestID := utils.GetRequestID(ctx)

	data := invoiceData{
		DisplayID:     withdrawal.DisplayID,
		WithdrawalID:  withdrawal.ID,
		IssuedAt:      time.Now().UTC(),
		DoctorName:    doctor.Name,
		DoctorEmail:   doctor.Email,
		PayoutAccount: maskPayoutAccount(doctor.BankDetails),
		Requested:     withdrawal.Amount,
		Paid:          withdrawal.Settled(),
		TransactionID: withdrawal.TransactionID,
		PaymentMode:   withdrawal.PaymentMode,
	}
	if withdrawal.PaymentDate != nil {
		data.PaymentDate = *withdrawal.PaymentDate
	}

	var buf bytes.Buffer
	if err := g.template.Execute(&buf, data); err != nil {
		g.Log.Error("textInvoiceGenerator.Generate error executing template",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWithdrawalIDKey, withdrawal.ID),
			zap.Error(err),
		)
		return "", err
	}

	objectPath := fmt.Sprintf(constvars.InvoiceObjectPathFormat, withdrawal.DoctorID, withdrawal.ID+"_"+uuid.NewString())
	url, err := g.Storage.Store(ctx, buf.Bytes(), objectPath, constvars.MIMETextPlain)
	if err != nil {
		g.Log.Error("textInvoiceGenerator.Generate error calling Storage.Store",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWithdrawalIDKey, withdrawal.ID),
			zap.String(constvars.LoggingObjectPathKey, objectPath),
			zap.Error(err),
		)
		return "", err
	}
	return url, nil
}

func maskPayoutAccount(details models.BankDetails) string {
	if details.AccountNumber == "" {
		return "UPI " + details.UPIID
	}
	account := details.AccountNumber
	if len(account) > 4 {
		account = "XXXX" + account[len(account)-4:]
	}
	if details.BankName == "" {
		return account
	}
	return details.BankName + " " + account
}
