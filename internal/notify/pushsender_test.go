package notify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeHTTPClient struct {
	resp *http.Response
	err  error
	req  *http.Request
}

func (f *fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	f.req = req
	return f.resp, f.err
}

func (f *fakeHTTPClient) Get(url string, headers http.Header) (int, []byte, http.Header, error) {
	return 0, nil, nil, nil
}

func newResp(status int) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(bytes.NewReader(nil))}
}

func TestHTTPPushSender_Send(t *testing.T) {
	client := &fakeHTTPClient{resp: newResp(http.StatusOK)}
	s := NewHTTPPushSender(client, "http://gateway")

	err := s.Send(context.Background(), "tok-1", "title", "body")
	assert.NoError(t, err)
	assert.Equal(t, "http://gateway/push/send", client.req.URL.String())
}

func TestHTTPPushSender_BroadcastNearby(t *testing.T) {
	client := &fakeHTTPClient{resp: newResp(http.StatusOK)}
	s := NewHTTPPushSender(client, "http://gateway")

	err := s.BroadcastNearby(context.Background(), 1, 1, 5, "title", "body")
	assert.NoError(t, err)
	assert.Equal(t, "http://gateway/push/broadcastNearby", client.req.URL.String())
}

func TestHTTPPushSender_NonSuccessStatus(t *testing.T) {
	client := &fakeHTTPClient{resp: newResp(http.StatusInternalServerError)}
	s := NewHTTPPushSender(client, "http://gateway")

	err := s.Send(context.Background(), "tok-1", "title", "body")
	assert.Error(t, err)
}
