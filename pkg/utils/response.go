package utils

import (
	"github.com/sirupsen/logrus"
)

// ResponseData is the envelope every JSON endpoint answers with.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded raises err so middleware.Recovery turns it into a response.
func PanicIfNeeded(err any) {
	if err != nil {
		logrus.Errorf("[HTTP] %v", err)
		panic(err)
	}
}
