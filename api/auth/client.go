package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/rotisserie/eris"

	"github.com/escrow-tf/giftbot/api"
	"github.com/escrow-tf/giftbot/steamid"
	"github.com/escrow-tf/giftbot/steamlang"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type Persistence int

//goland:noinspection GoUnusedConst
const (
	InvalidSessionPersistence    Persistence = -1
	EphemeralSessionPersistence  Persistence = 0
	PersistentSessionPersistence Persistence = 1
)

type PlatformType int

//goland:noinspection GoUnusedConst
const (
	UnknownPlatformType PlatformType = iota
	SteamClientPlatformType
	WebBrowserPlatformType
	MobileAppPlatformType
)

type TokenRenewalType int

const (
	NoneRenewalType TokenRenewalType = iota
	AllowRenewalType
)

type GuardType int

//goland:noinspection GoUnusedConst
const (
	UnknownGuardType GuardType = iota
	NoneGuardType
	EmailCodeGuardType
	DeviceCodeGuardType
	DeviceConfirmationGuardType
	EmailConfirmationGuardType
	MachineTokenGuardType
	LegacyMachineAuthGuardType
)

const (
	AndroidUnknownOsType    int = -500
	DefaultGamingDeviceType int = 528
)

type Client struct {
	Transport api.Transport
	BaseURL   string
}

func NewClient(transport api.Transport) *Client {
	return &Client{
		Transport: transport,
		BaseURL:   api.BaseURL,
	}
}

// formRequest carries what every IAuthenticationService call shares.
type formRequest struct {
	baseUrl string
	method  string
	path    string
	values  url.Values
}

func (r formRequest) Retryable() bool {
	return false
}

func (r formRequest) RequiresApiKey() bool {
	return false
}

func (r formRequest) Method() string {
	return r.method
}

func (r formRequest) Url() string {
	return fmt.Sprintf("%s/IAuthenticationService/%s/v1/", r.baseUrl, r.path)
}

func (r formRequest) Values() (url.Values, error) {
	return r.values, nil
}

func (r formRequest) Headers() (http.Header, error) {
	return nil, nil
}

func (r formRequest) EnsureResponseSuccess(httpResponse *http.Response) error {
	return steamlang.EnsureSuccessResponse(httpResponse)
}

type PublicRsaKey struct {
	PublicKey rsa.PublicKey
	Timestamp string
}

type GetRsaKeyResponse struct {
	Response struct {
		PublicKeyMod string `json:"publickey_mod"`
		PublicKeyExp string `json:"publickey_exp"`
		Timestamp    string `json:"timestamp"`
	} `json:"response"`
}

func (r GetRsaKeyResponse) PublicKey() (PublicRsaKey, error) {
	exponent, err := strconv.ParseInt(r.Response.PublicKeyExp, 16, 64)
	if err != nil {
		return PublicRsaKey{}, eris.Wrap(err, "error parsing public key exponent")
	}

	modulus, ok := new(big.Int).SetString(r.Response.PublicKeyMod, 16)
	if !ok {
		return PublicRsaKey{}, eris.New("error parsing public key modulus")
	}

	return PublicRsaKey{
		PublicKey: rsa.PublicKey{
			E: int(exponent),
			N: modulus,
		},
		Timestamp: r.Response.Timestamp,
	}, nil
}

func (c *Client) GetPublicRsaKey(ctx context.Context, accountName string) (PublicRsaKey, error) {
	request := formRequest{
		baseUrl: c.BaseURL,
		method:  http.MethodGet,
		path:    "GetPasswordRSAPublicKey",
		values:  url.Values{"account_name": []string{accountName}},
	}
	var response GetRsaKeyResponse
	if sendErr := c.Transport.Send(ctx, request, &response); sendErr != nil {
		return PublicRsaKey{}, sendErr
	}

	return response.PublicKey()
}

type EncryptedPassword struct {
	Base64    string
	TimeStamp string
}

// EncryptAccountPassword retrieves the RSA key for accountName and encrypts
// password with it.
func (c *Client) EncryptAccountPassword(ctx context.Context, accountName string, password string) (EncryptedPassword, error) {
	publicKey, err := c.GetPublicRsaKey(ctx, accountName)
	if err != nil {
		return EncryptedPassword{}, eris.Wrap(err, "GetPublicRsaKey failed")
	}

	encryptedPassword, err := rsa.EncryptPKCS1v15(rand.Reader, &publicKey.PublicKey, []byte(password))
	if err != nil {
		return EncryptedPassword{}, eris.Wrap(err, "rsa.EncryptPKCS1v15 failed")
	}

	return EncryptedPassword{
		Base64:    base64.StdEncoding.EncodeToString(encryptedPassword),
		TimeStamp: publicKey.Timestamp,
	}, nil
}

type DeviceDetails struct {
	FriendlyName     string       `json:"device_friendly_name"`
	PlatformType     PlatformType `json:"platform_type"`
	OsType           int          `json:"os_type"`
	GamingDeviceType int          `json:"gaming_device_type"`
}

type AllowedConfirmation struct {
	ConfirmationType  GuardType `json:"confirmation_type"`
	AssociatedMessage string    `json:"associated_message,omitempty"`
}

type StartSessionResponse struct {
	Response struct {
		ClientId             string                `json:"client_id"`
		RequestId            string                `json:"request_id"`
		Interval             float64               `json:"interval"`
		SteamId              string                `json:"steamid"`
		WeakToken            string                `json:"weak_token,omitempty"`
		AgreementSessionUrl  string                `json:"agreement_session_url,omitempty"`
		ExtendedErrorMessage string                `json:"extended_error_message,omitempty"`
		AllowedConfirmations []AllowedConfirmation `json:"allowed_confirmations,omitempty"`
	} `json:"response"`
}

// Allows reports whether guardType is among the confirmations Steam offered.
func (r StartSessionResponse) Allows(guardType GuardType) bool {
	for _, allowed := range r.Response.AllowedConfirmations {
		if allowed.ConfirmationType == guardType {
			return true
		}
	}
	return false
}

func (c *Client) StartSessionWithCredentials(
	ctx context.Context,
	accountName string,
	password EncryptedPassword,
	deviceDetails DeviceDetails,
) (StartSessionResponse, error) {
	deviceDetailsBytes, err := json.Marshal(deviceDetails)
	if err != nil {
		return StartSessionResponse{}, eris.Wrap(err, "error marshalling device details")
	}

	values := make(url.Values)
	values.Add("account_name", accountName)
	values.Add("encrypted_password", password.Base64)
	values.Add("encryption_timestamp", password.TimeStamp)
	values.Add("persistence", strconv.Itoa(int(PersistentSessionPersistence)))
	values.Add("website_id", "Mobile")
	values.Add("language", "0")
	values.Add("qos_level", "2")
	values.Add("device_details", string(deviceDetailsBytes))

	request := formRequest{
		baseUrl: c.BaseURL,
		method:  http.MethodPost,
		path:    "BeginAuthSessionViaCredentials",
		values:  values,
	}
	var response StartSessionResponse
	if sendErr := c.Transport.Send(ctx, request, &response); sendErr != nil {
		return StartSessionResponse{}, sendErr
	}

	return response, nil
}

func (c *Client) SubmitSteamGuardCode(ctx context.Context, clientID string, steamID steamid.SteamID, code string) error {
	if !steamID.IsValidIndividual() {
		return eris.Errorf("steamID is not valid individual: %v", steamID.String())
	}

	request := formRequest{
		baseUrl: c.BaseURL,
		method:  http.MethodPost,
		path:    "UpdateAuthSessionWithSteamGuardCode",
		values: url.Values{
			"client_id": []string{clientID},
			"steamid":   []string{steamID.String()},
			"code":      []string{code},
			"code_type": []string{strconv.Itoa(int(DeviceCodeGuardType))},
		},
	}

	return c.Transport.Send(ctx, request, nil)
}

type PollSessionStatusResponse struct {
	Response struct {
		NewClientID          string `json:"new_client_id,omitempty"`
		NewChallenge         string `json:"new_challenge,omitempty"`
		RefreshToken         string `json:"refresh_token,omitempty"`
		AccessToken          string `json:"access_token,omitempty"`
		HadRemoteInteraction bool   `json:"had_remote_interaction,omitempty"`
		AccountName          string `json:"account_name,omitempty"`
	} `json:"response"`
}

func (c *Client) PollSessionStatus(ctx context.Context, clientID string, requestID string) (PollSessionStatusResponse, error) {
	request := formRequest{
		baseUrl: c.BaseURL,
		method:  http.MethodPost,
		path:    "PollAuthSessionStatus",
		values: url.Values{
			"client_id":  []string{clientID},
			"request_id": []string{requestID},
		},
	}
	var response PollSessionStatusResponse
	if sendErr := c.Transport.Send(ctx, request, &response); sendErr != nil {
		return PollSessionStatusResponse{}, sendErr
	}
	return response, nil
}

type GenerateAccessTokenResponse struct {
	Response struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token,omitempty"`
	} `json:"response"`
}

func (c *Client) GenerateAccessTokenForApp(ctx context.Context, refreshToken string, renew bool) (GenerateAccessTokenResponse, error) {
	claims, err := ParseTokenClaims(refreshToken)
	if err != nil {
		return GenerateAccessTokenResponse{}, err
	}

	renewalType := NoneRenewalType
	if renew {
		renewalType = AllowRenewalType
	}

	request := formRequest{
		baseUrl: c.BaseURL,
		method:  http.MethodPost,
		path:    "GenerateAccessTokenForApp",
		values: url.Values{
			"refresh_token": []string{refreshToken},
			"steamid":       []string{claims.Subject},
			"renewal_type":  []string{strconv.Itoa(int(renewalType))},
		},
	}
	var response GenerateAccessTokenResponse
	if sendErr := c.Transport.Send(ctx, request, &response); sendErr != nil {
		return GenerateAccessTokenResponse{}, sendErr
	}

	return response, nil
}
