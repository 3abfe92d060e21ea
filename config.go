// config.go: 設定ファイル（TOML）の読み書き。
// キャプチャスレッドの起動ごとに読み込み、値のスナップショットとして渡す。
package main

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	appName        = "coastwheel"
	configFileName = "config.toml"
)

// Config はキャプチャスレッドが起動時に受け取る設定値。
type Config struct {
	DecayRate    float64 // 減衰率 mu (1/sec)、0 以上
	SensitivityY int     // 縦感度（負で反転、0 で無効）
	SensitivityX int     // 横感度
	StepY        int     // 予約（離散ステップモード用）
	StepX        int
	Flick        bool // ボタンアップ後も慣性を残す
	Think        bool // 読み込むだけで未使用
}

// configFile はファイル上の表現。フラグも 0/1 の整数で持つ。
type configFile struct {
	Decay int `toml:"decay"`
	SensY int `toml:"sensY"`
	SensX int `toml:"sensX"`
	StepY int `toml:"stepY"`
	StepX int `toml:"stepX"`
	Flick int `toml:"flick"`
	Think int `toml:"think"`
}

func defaultConfigFile() configFile {
	return configFile{
		Decay: 3,
		SensY: 18,
		SensX: 0,
		StepY: 120,
		StepX: 120,
		Flick: 0,
		Think: 0,
	}
}

// config は値を補正して Config に変換する。
// 減衰率とステップは 0 未満を 0 に、フラグは {0,1} に丸める。
func (f configFile) config() Config {
	return Config{
		DecayRate:    float64(max(f.Decay, 0)),
		SensitivityY: f.SensY,
		SensitivityX: f.SensX,
		StepY:        max(f.StepY, 0),
		StepX:        max(f.StepX, 0),
		Flick:        min(max(f.Flick, 0), 1) == 1,
		Think:        min(max(f.Think, 0), 1) == 1,
	}
}

// defaultConfig は既定値の Config を返す。
func defaultConfig() Config {
	return defaultConfigFile().config()
}

// configField はファイル上のキーと格納先の対応。
type configField struct {
	key string
	dst *int
}

func (f *configFile) fields() []configField {
	return []configField{
		{"decay", &f.Decay},
		{"sensY", &f.SensY},
		{"sensX", &f.SensX},
		{"stepY", &f.StepY},
		{"stepX", &f.StepX},
		{"flick", &f.Flick},
		{"think", &f.Think},
	}
}

// loadConfig は設定ファイルを読み込む。
// ファイルがない・壊れている場合は既定値を使い、ログに残すだけでエラーは返さない。
// 値はキーごとに読み、不正なキーだけ既定値のままにする。
func loadConfig(path string) Config {
	f := defaultConfigFile()
	var raw map[string]toml.Primitive
	md, err := toml.DecodeFile(path, &raw)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			configLog.Debugf("config file %s not found, using defaults", path)
		} else {
			configLog.Warnf("couldn't read config file %s, using defaults: %v", path, err)
		}
		return defaultConfig()
	}
	for _, field := range f.fields() {
		prim, ok := raw[field.key]
		if !ok {
			continue
		}
		var v int
		if err := md.PrimitiveDecode(prim, &v); err != nil {
			configLog.Warnf("invalid %s in %s, using default %d: %v", field.key, path, *field.dst, err)
			continue
		}
		*field.dst = v
	}
	return f.config()
}

// writeConfig は設定ファイルを書き出す。
func writeConfig(path string, f configFile) error {
	var buffer bytes.Buffer
	if err := toml.NewEncoder(&buffer).Encode(f); err != nil {
		return err
	}
	return os.WriteFile(path, buffer.Bytes(), 0644)
}

// initializeConfigIfNot は設定ファイルがなければ既定値で作成する。
func initializeConfigIfNot(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	configLog.Infof("initializing config %s", path)
	return writeConfig(path, defaultConfigFile())
}

// defaultConfigPath は OS の設定ディレクトリ配下の設定ファイルパスを返す。
func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		configLog.Warnf("couldn't resolve user config dir, falling back to working directory: %v", err)
		dir = "."
	}
	return filepath.Join(dir, appName, configFileName)
}
