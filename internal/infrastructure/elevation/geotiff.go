package elevation

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/google/tiff"
	_ "github.com/google/tiff/geotiff"
	"golang.org/x/image/tiff/lzw"

	"CityScape3D/internal/domain/model"
)

// float32NoData GDALがfloat32ラスタのNoDataに使う値のビットパターン
const float32NoDataBits = 0xff7fffff

// int16NoData SRTM系ラスタのNoData値
const int16NoData = -32768

var float32NoData = math.Float32frombits(float32NoDataBits)

// GridDecoder ラスタデコードの外部コラボレータ契約
type GridDecoder interface {
	Decode(data []byte, bbox model.GeoBoundingBox, res model.Resolution) (*model.ElevationGrid, error)
}

// geoTIFFIFD github.com/google/tiff がIFDをアンマーシャルするための構造体
type geoTIFFIFD struct {
	ImageWidth      uint16   `tiff:"field,tag=256"`
	ImageLength     uint16   `tiff:"field,tag=257"`
	BitsPerSample   uint16   `tiff:"field,tag=258"`
	Compression     uint16   `tiff:"field,tag=259"`
	StripOffsets    []uint64 `tiff:"field,tag=273"`
	SamplesPerPixel uint16   `tiff:"field,tag=277"`
	RowsPerStrip    uint32   `tiff:"field,tag=278"`
	StripByteCounts []uint64 `tiff:"field,tag=279"`
	Predictor       uint16   `tiff:"field,tag=317"`
	TileWidth       uint16   `tiff:"field,tag=322"`
	TileLength      uint16   `tiff:"field,tag=323"`
	TileOffsets     []uint64 `tiff:"field,tag=324"`
	TileByteCounts  []uint64 `tiff:"field,tag=325"`
	SampleFormat    uint16   `tiff:"field,tag=339"`
}

// GeoTIFFDecoder OpenTopographyが返す狭いGTiffプロファイル専用のデコーダ
// リトルエンディアン・単一バンド・float32またはint16・ストリップまたはタイル構成・
// 無圧縮またはLZWのみを受け付け、それ以外は明示的なエラーで拒否する
// （本格的なGeoTIFF対応はスコープ外）
type GeoTIFFDecoder struct{}

// NewGeoTIFFDecoder 新しいGeoTIFFDecoderインスタンスを作成
func NewGeoTIFFDecoder() *GeoTIFFDecoder {
	return &GeoTIFFDecoder{}
}

// Decode GTiffバイト列を標高グリッドにデコードする
func (d *GeoTIFFDecoder) Decode(data []byte, bbox model.GeoBoundingBox, res model.Resolution) (*model.ElevationGrid, error) {
	parsed, err := tiff.Parse(bytes.NewReader(data), tiff.GetTagSpace("GeoTIFF"), nil)
	if err != nil {
		return nil, fmt.Errorf("TIFFのパースに失敗: %w", err)
	}
	if len(parsed.IFDs()) == 0 {
		return nil, fmt.Errorf("TIFFにIFDがありません")
	}

	var ifd geoTIFFIFD
	if err := tiff.UnmarshalIFD(parsed.IFDs()[0], &ifd); err != nil {
		return nil, fmt.Errorf("IFDのアンマーシャルに失敗: %w", err)
	}

	if err := validateIFD(&ifd); err != nil {
		return nil, err
	}

	width := int(ifd.ImageWidth)
	length := int(ifd.ImageLength)
	bytesPerSample := int(ifd.BitsPerSample) / 8
	raw := make([]byte, width*length*bytesPerSample)

	if len(ifd.TileOffsets) > 0 {
		err = assembleTiles(raw, data, &ifd, width, length, bytesPerSample)
	} else {
		err = assembleStrips(raw, data, &ifd, width, length, bytesPerSample)
	}
	if err != nil {
		return nil, err
	}

	values := decodeSamples(raw, &ifd, width, length)
	return &model.ElevationGrid{
		Values:   values,
		CellSize: bbox.WidthMeters() / float64(width),
		Bounds:   bbox,
	}, nil
}

// validateIFD 対応プロファイルに収まっているか検証する
func validateIFD(ifd *geoTIFFIFD) error {
	if ifd.SamplesPerPixel > 1 {
		return fmt.Errorf("未対応のバンド数です: %d (単一バンドのみ対応)", ifd.SamplesPerPixel)
	}
	if ifd.Compression != 0 && ifd.Compression != 1 && ifd.Compression != 5 {
		return fmt.Errorf("未対応の圧縮方式です: %d (無圧縮またはLZWのみ対応)", ifd.Compression)
	}
	if ifd.Predictor > 1 {
		return fmt.Errorf("未対応のPredictorです: %d", ifd.Predictor)
	}
	switch {
	case ifd.BitsPerSample == 32 && ifd.SampleFormat == 3:
	case ifd.BitsPerSample == 16:
	default:
		return fmt.Errorf("未対応のサンプル形式です: %dビット format=%d", ifd.BitsPerSample, ifd.SampleFormat)
	}
	if ifd.ImageWidth == 0 || ifd.ImageLength == 0 {
		return fmt.Errorf("画像サイズが不正です: %dx%d", ifd.ImageWidth, ifd.ImageLength)
	}
	return nil
}

// assembleStrips ストリップ構成のラスタをrawに組み立てる
func assembleStrips(raw, data []byte, ifd *geoTIFFIFD, width, length, bytesPerSample int) error {
	if len(ifd.StripOffsets) == 0 || len(ifd.StripOffsets) != len(ifd.StripByteCounts) {
		return fmt.Errorf("ストリップ情報が不正です")
	}
	rowsPerStrip := int(ifd.RowsPerStrip)
	if rowsPerStrip == 0 {
		rowsPerStrip = length
	}

	rowBytes := width * bytesPerSample
	for i, offset := range ifd.StripOffsets {
		startRow := i * rowsPerStrip
		rows := rowsPerStrip
		if startRow+rows > length {
			rows = length - startRow
		}
		decoded, err := readSegment(data, offset, ifd.StripByteCounts[i], rows*rowBytes, ifd.Compression)
		if err != nil {
			return fmt.Errorf("ストリップ%dの読み取りに失敗: %w", i, err)
		}
		copy(raw[startRow*rowBytes:], decoded[:rows*rowBytes])
	}
	return nil
}

// assembleTiles タイル構成のラスタをrawに組み立てる（端のタイルは切り詰める）
func assembleTiles(raw, data []byte, ifd *geoTIFFIFD, width, length, bytesPerSample int) error {
	tileWidth := int(ifd.TileWidth)
	tileLength := int(ifd.TileLength)
	if tileWidth == 0 || tileLength == 0 {
		return fmt.Errorf("タイルサイズが不正です")
	}
	tilesAcross := (width + tileWidth - 1) / tileWidth
	tilesDown := (length + tileLength - 1) / tileLength
	if len(ifd.TileOffsets) != tilesAcross*tilesDown || len(ifd.TileByteCounts) != len(ifd.TileOffsets) {
		return fmt.Errorf("タイル数が一致しません")
	}

	tileRowBytes := tileWidth * bytesPerSample
	rowBytes := width * bytesPerSample
	for t, offset := range ifd.TileOffsets {
		decoded, err := readSegment(data, offset, ifd.TileByteCounts[t], tileLength*tileRowBytes, ifd.Compression)
		if err != nil {
			return fmt.Errorf("タイル%dの読み取りに失敗: %w", t, err)
		}

		tileRow := t / tilesAcross
		tileCol := t % tilesAcross
		for r := 0; r < tileLength; r++ {
			destRow := tileRow*tileLength + r
			if destRow >= length {
				break
			}
			destCol := tileCol * tileWidth
			copyBytes := tileRowBytes
			if destCol*bytesPerSample+copyBytes > rowBytes {
				copyBytes = rowBytes - destCol*bytesPerSample
			}
			copy(raw[destRow*rowBytes+destCol*bytesPerSample:], decoded[r*tileRowBytes:r*tileRowBytes+copyBytes])
		}
	}
	return nil
}

// readSegment ストリップ/タイル1つ分のバイト列を読み、必要ならLZW伸長する
func readSegment(data []byte, offset, byteCount uint64, uncompressedSize int, compression uint16) ([]byte, error) {
	// offset+byteCountは巨大なオフセット値でオーバーフローするため差で比較する
	if offset > uint64(len(data)) || byteCount > uint64(len(data))-offset {
		return nil, fmt.Errorf("オフセットがデータ範囲外です")
	}
	segment := data[offset : offset+byteCount]

	if compression != 5 {
		if len(segment) < uncompressedSize {
			padded := make([]byte, uncompressedSize)
			copy(padded, segment)
			return padded, nil
		}
		return segment, nil
	}

	decoded := make([]byte, uncompressedSize)
	r := lzw.NewReader(bytes.NewReader(segment), lzw.MSB, 8)
	for read := 0; read < uncompressedSize; {
		n, err := r.Read(decoded[read:])
		if n == 0 && err != nil {
			return nil, fmt.Errorf("LZW伸長に失敗: %w", err)
		}
		read += n
	}
	return decoded, nil
}

// decodeSamples 生バイト列を行×列のfloat64グリッドに変換する
// NoData値は0に置き換える
func decodeSamples(raw []byte, ifd *geoTIFFIFD, width, length int) [][]float64 {
	values := make([][]float64, length)
	for i := 0; i < length; i++ {
		row := make([]float64, width)
		for j := 0; j < width; j++ {
			idx := i*width + j
			var v float64
			if ifd.BitsPerSample == 32 {
				f := math.Float32frombits(binary.LittleEndian.Uint32(raw[idx*4 : idx*4+4]))
				if f == float32NoData || math.IsNaN(float64(f)) {
					f = 0
				}
				v = float64(f)
			} else {
				s := int16(binary.LittleEndian.Uint16(raw[idx*2 : idx*2+2]))
				if s == int16NoData {
					s = 0
				}
				v = float64(s)
			}
			row[j] = v
		}
		values[i] = row
	}
	return values
}
