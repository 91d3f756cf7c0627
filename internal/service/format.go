package service

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pricePrinter = message.NewPrinter(language.Korean)

// formatPrice renders an amount with ko-KR thousands separators, e.g. 40,000.
func formatPrice(price int) string {
	return pricePrinter.Sprintf("%d", price)
}

const (
	fallbackBuyerName  = "구매자"
	fallbackSellerName = "판매자"
)

func offerSummary(price int) string {
	return "가격 제안: " + formatPrice(price) + "원"
}

func resultSummary(accepted bool) string {
	if accepted {
		return "가격 제안이 수락되었습니다"
	}
	return "가격 제안이 거절되었습니다"
}

func offerNotificationBody(buyer string, price int) string {
	return buyer + "님이 " + formatPrice(price) + "원으로 가격을 제안했어요."
}

func resultNotificationTitle(accepted bool) string {
	if accepted {
		return "가격 제안 수락"
	}
	return "가격 제안 거절"
}

func resultNotificationBody(seller string, price int, accepted bool) string {
	if accepted {
		return seller + "님이 " + formatPrice(price) + "원 제안을 수락했어요!"
	}
	return seller + "님이 " + formatPrice(price) + "원 제안을 거절했어요."
}
