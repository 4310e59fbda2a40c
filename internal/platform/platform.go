// Package platform maps host build targets to short platform names and the
// album authorization scope each platform expects.
package platform

import (
	"strings"

	"github.com/serroba/albumkit/internal/imagesaver"
)

// Platform is a short host platform name.
type Platform string

const (
	Unknown Platform = ""
	IOS     Platform = "ios"
	Android Platform = "android"
	App     Platform = "app"
	WeChat  Platform = "wx"
	Alipay  Platform = "alipay"
	Baidu   Platform = "baidu"
	QQ      Platform = "qq"
	Toutiao Platform = "toutiao"
	Kuai    Platform = "kuai"
)

var miniPrograms = map[string]Platform{
	"mp-weixin":        WeChat,
	"mp-alipay":        Alipay,
	"mp-baidu":         Baidu,
	"mp-qq":            QQ,
	"mp-toutiao":       Toutiao,
	"quickapp-webview": Kuai,
}

// Detect resolves a build target such as "mp-weixin" to a Platform. For
// native app targets the device OS decides between ios, android and app.
func Detect(target, systemOS string) Platform {
	target = strings.ToLower(strings.TrimSpace(target))

	switch target {
	case "app", "app-plus":
		switch strings.ToLower(strings.TrimSpace(systemOS)) {
		case "ios":
			return IOS
		case "android":
			return Android
		default:
			return App
		}
	}

	return miniPrograms[target]
}

// AlbumScope returns the authorization scope guarding album writes on p.
func AlbumScope(p Platform) imagesaver.Scope {
	if p == Toutiao {
		return imagesaver.ScopeAlbum
	}

	return imagesaver.ScopeWritePhotosAlbum
}
