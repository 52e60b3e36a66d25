package rates

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/craftbill/invoice-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Client fetches daily exchange rates from the central bank's SOAP feed,
// used to present invoice totals in a different display currency.
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new rates client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.RatesURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildSOAPRequest creates a SOAP request for the daily currency rates
func (c *Client) buildSOAPRequest() string {
	onDate := time.Now().Format("2006-01-02")
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
		<soap12:Envelope xmlns:soap12="http://www.w3.org/2003/05/soap-envelope">
			<soap12:Body>
				<GetCursOnDate xmlns="http://web.cbr.ru/">
					<On_date>%s</On_date>
				</GetCursOnDate>
			</soap12:Body>
		</soap12:Envelope>`, onDate)
}

// sendRequest sends the SOAP request to the rates endpoint
func (c *Client) sendRequest(soapRequest string) ([]byte, error) {
	req, err := http.NewRequest("POST", c.url, bytes.NewBuffer([]byte(soapRequest)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", "http://web.cbr.ru/GetCursOnDate")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("Rates XML response: %s", string(body))

	return body, nil
}

// parseXMLResponse extracts the rate for one currency code from the daily
// rates table. The returned value is the price of one unit of the currency.
func (c *Client) parseXMLResponse(rawBody []byte, currency string) (float64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return 0, fmt.Errorf("failed to parse XML: %v", err)
	}

	rows := doc.FindElements("//ValuteData/ValuteCursOnDate")
	if len(rows) == 0 {
		return 0, fmt.Errorf("no rate data found in XML")
	}

	for _, row := range rows {
		code := row.FindElement("./VchCode")
		if code == nil || !strings.EqualFold(strings.TrimSpace(code.Text()), currency) {
			continue
		}

		rateElement := row.FindElement("./Vcurs")
		nomElement := row.FindElement("./Vnom")
		if rateElement == nil || nomElement == nil {
			return 0, fmt.Errorf("rate elements missing for %s", currency)
		}

		var rate, nominal float64
		if _, err := fmt.Sscanf(rateElement.Text(), "%f", &rate); err != nil {
			return 0, fmt.Errorf("failed to parse rate: %v", err)
		}
		if _, err := fmt.Sscanf(nomElement.Text(), "%f", &nominal); err != nil {
			return 0, fmt.Errorf("failed to parse nominal: %v", err)
		}
		if nominal == 0 {
			return 0, fmt.Errorf("zero nominal for %s", currency)
		}

		return rate / nominal, nil
	}

	return 0, fmt.Errorf("currency %s not found in daily rates", currency)
}

// GetDailyRate retrieves the current rate for a currency code
func (c *Client) GetDailyRate(currency string) (float64, error) {
	soapRequest := c.buildSOAPRequest()
	body, err := c.sendRequest(soapRequest)
	if err != nil {
		return 0, err
	}

	rate, err := c.parseXMLResponse(body, currency)
	if err != nil {
		return 0, err
	}

	c.log.Infof("Retrieved daily rate for %s: %.4f", currency, rate)
	return rate, nil
}
