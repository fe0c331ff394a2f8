package services

import (
	"context"
	"strings"

	"mobile-money-service/cache"
	"mobile-money-service/models"

	"go.uber.org/zap"
)

// operatorCatalog is the static per-country catalog of supported operators.
var operatorCatalog = map[string][]models.Operator{
	"CM": {
		{Code: "mtn-cm", Name: "MTN Mobile Money", Country: "CM", Currency: "XAF"},
		{Code: "orange-cm", Name: "Orange Money", Country: "CM", Currency: "XAF"},
	},
	"SN": {
		{Code: "orange-sn", Name: "Orange Money", Country: "SN", Currency: "XOF"},
		{Code: "wave-sn", Name: "Wave", Country: "SN", Currency: "XOF"},
		{Code: "free-sn", Name: "Free Money", Country: "SN", Currency: "XOF"},
	},
	"CI": {
		{Code: "mtn-ci", Name: "MTN Mobile Money", Country: "CI", Currency: "XOF"},
		{Code: "orange-ci", Name: "Orange Money", Country: "CI", Currency: "XOF"},
		{Code: "moov-ci", Name: "Moov Money", Country: "CI", Currency: "XOF"},
	},
	"NG": {
		{Code: "mtn-ng", Name: "MTN MoMo", Country: "NG", Currency: "NGN"},
		{Code: "airtel-ng", Name: "Airtel Money", Country: "NG", Currency: "NGN"},
		{Code: "opay-ng", Name: "OPay", Country: "NG", Currency: "NGN"},
	},
	"GH": {
		{Code: "mtn-gh", Name: "MTN Mobile Money", Country: "GH", Currency: "GHS"},
		{Code: "vodafone-gh", Name: "Vodafone Cash", Country: "GH", Currency: "GHS"},
		{Code: "airteltigo-gh", Name: "AirtelTigo Money", Country: "GH", Currency: "GHS"},
	},
	"KE": {
		{Code: "mpesa-ke", Name: "M-Pesa", Country: "KE", Currency: "KES"},
		{Code: "airtel-ke", Name: "Airtel Money", Country: "KE", Currency: "KES"},
	},
	"UG": {
		{Code: "mtn-ug", Name: "MTN Mobile Money", Country: "UG", Currency: "UGX"},
		{Code: "airtel-ug", Name: "Airtel Money", Country: "UG", Currency: "UGX"},
	},
	"TZ": {
		{Code: "mpesa-tz", Name: "M-Pesa", Country: "TZ", Currency: "TZS"},
		{Code: "tigopesa-tz", Name: "Tigo Pesa", Country: "TZ", Currency: "TZS"},
		{Code: "airtel-tz", Name: "Airtel Money", Country: "TZ", Currency: "TZS"},
	},
}

// OperatorService serves the per-country operator catalog through a cache.
type OperatorService interface {
	GetOperators(ctx context.Context, country string) ([]models.Operator, error)
}

type operatorServiceImpl struct {
	cache  *cache.OperatorCache
	logger *zap.Logger
}

func NewOperatorService(cache *cache.OperatorCache, logger *zap.Logger) OperatorService {
	return &operatorServiceImpl{cache: cache, logger: logger}
}

// GetOperators returns the operators for a country, cache-aside. An unknown
// country yields an empty list, not an error.
func (s *operatorServiceImpl) GetOperators(ctx context.Context, country string) ([]models.Operator, error) {
	country = strings.ToUpper(country)

	if cached, err := s.cache.Get(ctx, country); err != nil {
		s.logger.Warn("Operator cache read failed", zap.String("country", country), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	operators := operatorCatalog[country]
	if operators == nil {
		operators = []models.Operator{}
	}

	if err := s.cache.Set(ctx, country, operators); err != nil {
		s.logger.Warn("Operator cache write failed", zap.String("country", country), zap.Error(err))
	}
	return operators, nil
}
