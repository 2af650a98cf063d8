package api

import (
	"net/http"

	"github.com/questx-lab/luckydraw/pkg/crypto"
)

type oauth2Opt struct {
	token string
}

func OAuth2(prefix, token string) *oauth2Opt {
	return &oauth2Opt{token: prefix + " " + token}
}

func (opt *oauth2Opt) Do(client defaultClient, req *http.Request) {
	req.Header.Add("Authorization", opt.token)
}

type signatureOpt struct {
	header string
	secret string
}

// Signature sets header to the hex HMAC-SHA256 of the request body.
func Signature(header, secret string) *signatureOpt {
	return &signatureOpt{header: header, secret: secret}
}

func (opt *signatureOpt) Do(client defaultClient, req *http.Request) {
	req.Header.Set(opt.header, crypto.HMACSHA256(client.rawBody, []byte(opt.secret)))
}
