//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译：
//
//	ebitenmobile bind -target android -tags mobile -javapkg com.gonewx.wavesurvival -o build/android/wavesurvival.aar ./mobile
//
// 移动端不嵌入 data/，使用内置的默认调参和场地。
package mobile

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"
	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/wavesurvival/pkg/app"
)

func init() {
	storage, err := gdata.Open(gdata.Config{AppName: "wavesurvival"})
	if err != nil {
		log.Printf("[Mobile] Warning: gdata unavailable: %v", err)
		storage = nil
	}

	session, err := app.NewSession(app.SessionOptions{
		Storage: storage,
		Resume:  true,
		Verbose: true,
	})
	if err != nil {
		log.Fatalf("会话初始化失败: %v", err)
	}

	// 注册游戏到 ebitenmobile
	mobile.SetGame(app.NewApp(app.Config{Verbose: true}, session))
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
