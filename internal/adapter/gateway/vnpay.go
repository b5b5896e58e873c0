package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/lamnm/aims-checkout/internal/core/domain"
	"github.com/lamnm/aims-checkout/internal/port"
)

const (
	vnpVersion    = "2.1.0"
	vnpCommand    = "pay"
	vnpCurrency   = "VND"
	vnpDateLayout = "20060102150405"

	// vnp_Amount is expressed in hundredths of a VND on the wire.
	vnpAmountScale = 100
)

// declineMessages maps the gateway's decline codes to messages shown to
// the customer. Unknown codes fall back to a generic decline.
var declineMessages = map[string]string{
	"07": "the transaction is suspected of fraud",
	"09": "the card is not registered for online banking",
	"24": "the customer cancelled the payment",
	"51": "the account has insufficient funds",
	"65": "the daily transaction limit was exceeded",
	"75": "the issuing bank is under maintenance",
}

// VNPay implements port.PaymentGateway against the VNPay interbank
// service: a signed redirect URL out, a signed callback query back.
type VNPay struct {
	tmnCode    string
	hashSecret string
	payURL     string
	returnURL  string
}

func NewVNPay(tmnCode, hashSecret, payURL, returnURL string) *VNPay {
	return &VNPay{
		tmnCode:    tmnCode,
		hashSecret: hashSecret,
		payURL:     payURL,
		returnURL:  returnURL,
	}
}

func (g *VNPay) GenerateURL(ctx context.Context, amount int64, description string) (string, error) {
	params := url.Values{}
	params.Set("vnp_Version", vnpVersion)
	params.Set("vnp_Command", vnpCommand)
	params.Set("vnp_TmnCode", g.tmnCode)
	params.Set("vnp_CurrCode", vnpCurrency)
	params.Set("vnp_Amount", strconv.FormatInt(amount*vnpAmountScale, 10))
	params.Set("vnp_TxnRef", uuid.NewString())
	params.Set("vnp_OrderInfo", description)
	params.Set("vnp_ReturnUrl", g.returnURL)
	params.Set("vnp_CreateDate", time.Now().Format(vnpDateLayout))

	// Encode sorts by key; the signature covers the sorted query.
	query := params.Encode()
	return g.payURL + "?" + query + "&vnp_SecureHash=" + g.sign(query), nil
}

func (g *VNPay) ParseResponse(ctx context.Context, raw string) (domain.Transaction, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: %v", port.ErrUnrecognizedResponse, err)
	}

	receivedHash := values.Get("vnp_SecureHash")
	if receivedHash == "" {
		return domain.Transaction{}, fmt.Errorf("%w: missing signature", port.ErrUnrecognizedResponse)
	}
	values.Del("vnp_SecureHash")
	values.Del("vnp_SecureHashType")

	// The hash data is rebuilt from the parsed params, sorted and
	// re-encoded the same way GenerateURL encodes them. If the gateway
	// ever percent-encodes differently than url.Values.Encode, the
	// verification has to move to the raw query ordering instead.
	expected := g.sign(values.Encode())
	if !hmac.Equal([]byte(expected), []byte(receivedHash)) {
		return domain.Transaction{}, &port.PaymentError{Code: "97", Message: "invalid signature"}
	}

	code := values.Get("vnp_ResponseCode")
	if code == "" {
		return domain.Transaction{}, fmt.Errorf("%w: missing response code", port.ErrUnrecognizedResponse)
	}

	rawAmount := values.Get("vnp_Amount")
	amount, err := strconv.ParseInt(rawAmount, 10, 64)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("%w: bad amount %q", port.ErrUnrecognizedResponse, rawAmount)
	}

	if code != "00" {
		message, ok := declineMessages[code]
		if !ok {
			message = "the payment was declined by the gateway"
		}
		return domain.Transaction{}, &port.PaymentError{Code: code, Message: message}
	}

	txnID := values.Get("vnp_TransactionNo")
	if txnID == "" {
		txnID = values.Get("vnp_TxnRef")
	}
	if txnID == "" {
		return domain.Transaction{}, fmt.Errorf("%w: missing transaction reference", port.ErrUnrecognizedResponse)
	}

	createdAt := time.Now()
	if payDate := values.Get("vnp_PayDate"); payDate != "" {
		if parsed, err := time.ParseInLocation(vnpDateLayout, payDate, time.Local); err == nil {
			createdAt = parsed
		}
	}

	return domain.Transaction{
		ID:        txnID,
		Amount:    amount / vnpAmountScale,
		Content:   values.Get("vnp_OrderInfo"),
		BankCode:  values.Get("vnp_BankCode"),
		Completed: true,
		CreatedAt: createdAt,
	}, nil
}

func (g *VNPay) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(g.hashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
